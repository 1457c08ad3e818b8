package dividends

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/dividends/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    Condition
		wantExt string
		wantTyp string
		wantErr *errors.Error
	}{
		"valid": {
			cond:    NewCondition("sigs", "ed25519", []byte{1, 2, 3}),
			wantExt: "sigs",
			wantTyp: "ed25519",
		},
		"too short extension": {
			cond:    NewCondition("a", "ed25519", []byte{1}),
			wantErr: errors.ErrInput,
		},
		"missing data": {
			cond:    Condition("sigs/ed25519/"),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, _, err := tc.cond.Parse()
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				assert.Error(t, tc.cond.Validate())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantTyp, typ)
			assert.NoError(t, tc.cond.Validate())
		})
	}
}

func TestAddress(t *testing.T) {
	cond := NewCondition("test", "holder", []byte("alice"))
	addr := cond.Address()
	require.NoError(t, addr.Validate())
	assert.Len(t, addr, AddressLength)
	assert.True(t, addr.Equals(NewAddress(cond)))
	assert.False(t, addr.Equals(NewCondition("test", "holder", []byte("bob")).Address()))

	assert.Equal(t, "(nil)", Address(nil).String())
	assert.True(t, errors.ErrEmpty.Is(Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(Address([]byte{1, 2}).Validate()))
}

func TestParseAddress(t *testing.T) {
	cond := NewCondition("test", "holder", []byte{0xca, 0xfe})
	addr := cond.Address()

	cases := map[string]struct {
		enc     string
		want    Address
		wantErr *errors.Error
	}{
		"hex": {
			enc:  addr.String(),
			want: addr,
		},
		"bech32": {
			enc:  "bech32:" + addr.Bech32(),
			want: addr,
		},
		"condition": {
			enc:  "cond:" + cond.String(),
			want: addr,
		},
		"bad hex": {
			enc:     "zz",
			wantErr: errors.ErrInput,
		},
		"short hex": {
			enc:     "0102",
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			enc:     "base64:AAAA",
			wantErr: errors.ErrType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAddress(tc.enc)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := NewCondition("test", "holder", []byte("x")).Address()
	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var got Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, addr, got)

	require.NoError(t, json.Unmarshal([]byte(`""`), &got))
	assert.Nil(t, got)
}
