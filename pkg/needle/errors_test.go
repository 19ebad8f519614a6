package needle

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorfHasNoCause(t *testing.T) {
	err := Errorf(InvalidArgument, "bad value: %d", 42)
	if err.Unwrap() != nil {
		t.Errorf("Errorf should not wrap a cause, got %v", err.Unwrap())
	}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IOError, cause, "writing %s", "file.dat")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through Wrap to the cause")
	}
	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestCodeOfExtractsCodeThroughWrapping(t *testing.T) {
	base := Errorf(ComparatorMinimumPaths, "need 2 paths")
	wrapped := fmt.Errorf("comparing videos: %w", base)
	doubleWrapped := fmt.Errorf("top level: %w", wrapped)

	if got := CodeOf(doubleWrapped); got != ComparatorMinimumPaths {
		t.Errorf("CodeOf = %v, want ComparatorMinimumPaths", got)
	}
}

func TestCodeOfNilIsOk(t *testing.T) {
	if got := CodeOf(nil); got != Ok {
		t.Errorf("CodeOf(nil) = %v, want Ok", got)
	}
}

func TestCodeOfForeignErrorIsUnknown(t *testing.T) {
	if got := CodeOf(errors.New("some other failure")); got != Unknown {
		t.Errorf("CodeOf(foreign) = %v, want Unknown", got)
	}
}

func TestCodeStringsAreStable(t *testing.T) {
	cases := map[Code]string{
		Ok:                          "Ok",
		InvalidArgument:             "InvalidArgument",
		FrameHashDataNotFound:       "FrameHashDataNotFound",
		FrameHashDataInvalidVersion: "FrameHashDataInvalidVersion",
		ComparatorMinimumPaths:      "ComparatorMinimumPaths",
		IOError:                     "IOError",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("Code(%d).String() = %q, want %q", code, got, want)
		}
	}
}
