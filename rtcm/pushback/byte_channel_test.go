package pushback

import (
	"testing"
)

// TestGetNextByte checks that bytes arrive in order and that a closed
// channel produces an error once drained.
func TestGetNextByte(t *testing.T) {
	ch := make(chan byte, 10)
	bc := New(ch)
	ch <- 1
	ch <- 2
	close(ch)

	for want := byte(1); want <= 2; want++ {
		got, err := bc.GetNextByte()
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if got != want {
			t.Errorf("want %d got %d", want, got)
		}
	}

	if _, err := bc.GetNextByte(); err == nil {
		t.Error("expected an error - the channel is closed and drained")
	}
}

// TestPushBack checks that pushed back bytes are replayed before the
// channel is read again.
func TestPushBack(t *testing.T) {
	ch := make(chan byte, 10)
	bc := New(ch)
	ch <- 42

	bc.PushBack(7)
	bc.PushBack(8)

	var got []byte
	for i := 0; i < 3; i++ {
		b, err := bc.GetNextByte()
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		got = append(got, b)
	}

	want := []byte{7, 8, 42}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: want %d got %d", i, want[i], got[i])
		}
	}
}

// TestPushBackAll checks that a pushed back run is replayed in order
// and ahead of any bytes already in the pushback buffer.
func TestPushBackAll(t *testing.T) {
	ch := make(chan byte, 10)
	bc := New(ch)
	close(ch)

	bc.PushBack(9)
	bc.PushBackAll([]byte{3, 4, 5})

	want := []byte{3, 4, 5, 9}
	for i := range want {
		b, err := bc.GetNextByte()
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if b != want[i] {
			t.Errorf("byte %d: want %d got %d", i, want[i], b)
		}
	}

	if _, err := bc.GetNextByte(); err == nil {
		t.Error("expected an error - nothing left to read")
	}
}

// TestNilChannel checks the error case of a ByteChannel with no
// underlying channel.
func TestNilChannel(t *testing.T) {
	bc := New(nil)
	if _, err := bc.GetNextByte(); err == nil {
		t.Error("expected an error")
	}
}
