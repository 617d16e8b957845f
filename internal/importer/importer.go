package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"
)

type ProductWriter interface {
	Upsert(ctx context.Context, in productrepo.CreateInput) (*domain.Product, error)
}

// CSVImporter reads catalog exports and inserts/updates products by slug.
// Expected headers: title, description, price_cents, currency, categories,
// images, quantity. Categories and images are pipe-separated.
type CSVImporter struct {
	reader *csv.Reader
	repo   ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, repo: repo}
}

// Run parses CSV rows and upserts one product per row. Returns the number of
// imported products.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"title", "price_cents"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		title := strings.TrimSpace(field(record, index, "title"))
		if title == "" {
			continue
		}
		cents, err := strconv.ParseInt(strings.TrimSpace(field(record, index, "price_cents")), 10, 64)
		if err != nil {
			return imported, fmt.Errorf("row %q: bad price: %w", title, err)
		}
		quantity := 0
		if raw := strings.TrimSpace(field(record, index, "quantity")); raw != "" {
			if quantity, err = strconv.Atoi(raw); err != nil {
				return imported, fmt.Errorf("row %q: bad quantity: %w", title, err)
			}
		}
		currency := strings.TrimSpace(field(record, index, "currency"))
		if currency == "" {
			currency = "INR"
		}

		var refs []productrepo.CategoryRef
		for _, name := range splitList(field(record, index, "categories")) {
			refs = append(refs, productrepo.CategoryRef{Name: name, Slug: catalog.Slugify(name)})
		}

		if _, err := i.repo.Upsert(ctx, productrepo.CreateInput{
			Title:       title,
			Slug:        catalog.Slugify(title),
			Description: strings.TrimSpace(field(record, index, "description")),
			PriceCents:  cents,
			Currency:    currency,
			Categories:  refs,
			ImageURLs:   splitList(field(record, index, "images")),
			Quantity:    quantity,
		}); err != nil {
			return imported, fmt.Errorf("upsert %q: %w", title, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
