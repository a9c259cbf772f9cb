package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"999", "999,00"},
		{"25000", "25.000,00"},
		{"1234567.5", "1.234.567,50"},
		{"12.345", "12,35"},
		{"-1500", "-1.500,00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestNonEmptyParts(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, nonEmptyParts("a", " ", "c"))
	assert.Empty(t, nonEmptyParts("", ""))
}

func TestGeneratePriceList(t *testing.T) {
	barcode := "7701234567890"
	company := &entity.Company{ID: "c-1", Name: "Tienda Centro", Address: "Calle 1", PhoneNumber: "555"}
	lines := []usecase.PriceListLine{
		{Product: &entity.Product{SKU: "CAF-01", Name: "Café", BasePrice: decimal.RequireFromString("12500"), Barcode: &barcode}, UOMSymbol: "kg"},
		{Product: &entity.Product{SKU: "AZU-01", Name: "Azúcar", BasePrice: decimal.RequireFromString("4300.50")}, UOMSymbol: "kg"},
	}

	out, err := NewPriceListGenerator().GeneratePriceList(context.Background(), company, lines, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGeneratePriceList_SinProductos(t *testing.T) {
	out, err := NewPriceListGenerator().GeneratePriceList(context.Background(), &entity.Company{Name: "Vacía"}, nil, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
