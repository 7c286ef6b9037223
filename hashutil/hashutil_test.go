package hashutil

import "testing"

func TestHashBytesDeterministic(t *testing.T) {
	a, err := HashBytes([]byte("hello"), SHA256)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashBytes([]byte("hello"), SHA256)
	if a != b {
		t.Errorf("expected deterministic hash, got %q != %q", a, b)
	}
}

func TestHashBytesAlgorithmsDiffer(t *testing.T) {
	sha, _ := HashBytes([]byte("hello"), SHA256)
	b3, _ := HashBytes([]byte("hello"), BLAKE3)
	if sha == b3 {
		t.Errorf("expected sha256 and blake3 to differ")
	}
}

func TestHashBytesUnsupportedAlgo(t *testing.T) {
	if _, err := HashBytes([]byte("x"), Algo("md5")); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

func TestCanonicalEncodeOrderIndependent(t *testing.T) {
	a := CanonicalEncode(map[string]string{"b": "2", "a": "1"})
	b := CanonicalEncode(map[string]string{"a": "1", "b": "2"})
	if string(a) != string(b) {
		t.Errorf("expected order-independent encoding, got %q != %q", a, b)
	}
}
