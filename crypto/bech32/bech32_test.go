package bech32

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/dividends/errors"
)

func TestKnownVector(t *testing.T) {
	// bech32 -e -h tiov 746573742d7061796c6f6164
	const enc = `tiov1w3jhxapdwpshjmr0v9jqymqq4y`

	want, err := hex.DecodeString("746573742d7061796c6f6164")
	if err != nil {
		t.Fatal(err)
	}

	hrp, payload, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if hrp != "tiov" {
		t.Fatalf("unexpected hrp %q", hrp)
	}
	if !bytes.Equal(want, payload) {
		t.Fatalf("want %x, got %x", want, payload)
	}

	raw, err := Encode(hrp, payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	if raw != enc {
		t.Fatalf("invalid encoding: %q", raw)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"address":  bytes.Repeat([]byte{0xab}, 20),
		"one byte": {0x01},
		"zeros":    make([]byte, 20),
	}
	for testName, payload := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := Encode(DefaultHRP, payload)
			if err != nil {
				t.Fatalf("encode: %s", err)
			}
			got, err := DecodeWithHRP(DefaultHRP, raw)
			if err != nil {
				t.Fatalf("decode: %s", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("want %x, got %x", payload, got)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	raw, err := Encode("other", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeWithHRP(DefaultHRP, raw); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
	if _, _, err := Decode("div1notvalid"); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
}
