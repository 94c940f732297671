package egis

import (
	"bytes"
	"testing"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"10.50", "10.5", true},
		{"10,50", "10.5", true},
		{" 7 ", "7", true},
		{"1.234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"", "", false},
		{"n/a", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parsePrice(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, 2024, parseTimestamp("2024-03-01T10:00:00+01:00").Year())
	assert.Equal(t, 15, parseTimestamp("15.04.2024 08:30:00").Day())
	assert.True(t, parseTimestamp("yesterday").IsZero())
	assert.True(t, parseTimestamp("").IsZero())
}

func TestDecodeResponse(t *testing.T) {
	t.Run("Latin1", func(t *testing.T) {
		// "Kühler" in ISO-8859-1
		body := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
			"<SearchQueryResponse><Search><Body><Item><ProductIdentification>" +
			"<ProprietaryProductNumber>1</ProprietaryProductNumber>" +
			"<ProprietaryProductDescription>K\xfchler</ProprietaryProductDescription>" +
			"</ProductIdentification></Item></Body></Search></SearchQueryResponse>")

		res, err := decodeResponse(bytes.NewReader(body))
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "Kühler", res.Records[0].Description)
	})

	t.Run("UnsupportedCharset", func(t *testing.T) {
		body := []byte(`<?xml version="1.0" encoding="KOI8-R"?><SearchQueryResponse/>`)

		_, err := decodeResponse(bytes.NewReader(body))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCatalog)
		assert.ErrorIs(t, err, errUnsupportedCharset)
	})

	t.Run("NoHeaderTotalFallsBackToCount", func(t *testing.T) {
		body := []byte(`<SearchQueryResponse><Item/><Item/><Item/></SearchQueryResponse>`)

		res, err := decodeResponse(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Len(t, res.Records, 3)
		assert.Equal(t, 3, res.Total)
	})

	t.Run("EmptyExceptionIsStillAnError", func(t *testing.T) {
		body := []byte(`<SearchQueryResponse><TransactionHeader><Exception/>` +
			`</TransactionHeader></SearchQueryResponse>`)

		_, err := decodeResponse(bytes.NewReader(body))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCatalog)
	})
}
