package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadProducts_UTF8ConCabecera(t *testing.T) {
	csv := "reference;name;unit;purchase_price;sale_price_local;sale_price_export;tax_rate\n" +
		"REF-1;Vis inox;u;1,20;2,50;3;20\n" +
		"REF-2;Écrou;u;;1 234,50;;5.5\n"
	products, err := readProducts(strings.NewReader(csv), "utf-8")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "REF-1", products[0].Reference)
	assert.Equal(t, "1.2", products[0].PurchasePrice.String())
	assert.Equal(t, "2.5", products[0].SalePriceLocal.String())
	assert.Equal(t, "Écrou", products[1].Name)
	assert.True(t, products[1].PurchasePrice.IsZero())
	assert.Equal(t, "1234.5", products[1].SalePriceLocal.String())
	assert.Equal(t, "5.5", products[1].TaxRate.String())
}

func TestReadProducts_Windows1252(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte("REF-3;Rondelle élastique;pièce;0;1;1;20\n"))
	require.NoError(t, err)

	products, err := readProducts(bytes.NewReader(raw), "windows-1252")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Rondelle élastique", products[0].Name)
	assert.Equal(t, "pièce", products[0].Unit)
}

func TestReadProducts_Errores(t *testing.T) {
	_, err := readProducts(strings.NewReader("REF;X;u;abc;0;0;0\n"), "utf-8")
	assert.ErrorContains(t, err, "línea 1")

	_, err = readProducts(strings.NewReader("REF;X;u\n"), "utf-8")
	assert.Error(t, err, "número de columnas incorrecto")

	_, err = readProducts(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}
