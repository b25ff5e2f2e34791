// import_products carga el catálogo de productos desde un CSV exportado de la hoja de cálculo.
//
// Uso: go run ./cmd/import_products [-charset windows-1252] productos.csv
// Columnas (separador ;): reference;name;unit;purchase_price;sale_price_local;sale_price_export;tax_rate
// Los importes aceptan coma decimal. Las referencias ya existentes se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

func main() {
	charset := flag.String("charset", "utf-8", "codificación del archivo: utf-8, windows-1252, iso-8859-1")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Uso: import_products [-charset windows-1252] productos.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	products, err := readProducts(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := usecase.NewProductUseCase(postgres.NewProductRepository(pool), cache.Nop{}, log)
	var created, skipped int
	for _, in := range products {
		if _, err := uc.Create(ctx, in); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("reference", in.Reference).Msg("crear producto")
		}
		created++
	}
	fmt.Printf("Importados %d productos, %d omitidos (referencia existente)\n", created, skipped)
}

const productFields = 7

// readProducts decodifica el CSV. La primera fila se ignora si es la cabecera.
func readProducts(r io.Reader, charset string) ([]dto.CreateProductRequest, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	case "iso-8859-1", "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("charset no soportado: %s", charset)
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = productFields

	var out []dto.CreateProductRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimPrefix(rec[0], "\ufeff"), "reference") {
			continue
		}

		in := dto.CreateProductRequest{
			Reference: strings.TrimSpace(rec[0]),
			Name:      strings.TrimSpace(rec[1]),
			Unit:      strings.TrimSpace(rec[2]),
		}
		amounts := []*decimal.Decimal{&in.PurchasePrice, &in.SalePriceLocal, &in.SalePriceExport, &in.TaxRate}
		for i, dst := range amounts {
			v, err := parseAmount(rec[3+i])
			if err != nil {
				return nil, fmt.Errorf("línea %d, columna %d: %w", line, 4+i, err)
			}
			*dst = v
		}
		out = append(out, in)
	}
	return out, nil
}

// parseAmount acepta "12,50", "12.50" y "1 234,50"; vacío = 0.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(s)
	return decimal.NewFromString(s)
}
