package admin

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

var csvHeader = []string{
	"Nome",
	"Email",
	"Telefone",
	"Data da Compra",
	"Método de Pagamento",
	"Total",
	"Itens",
}

const csvDateFormat = "02/01/2006, 15:04"

// ExportCSV writes the spreadsheet export: a bare header line, then one row per
// customer with every cell quoted.
func (s *Service) ExportCSV(w io.Writer, customers []*domain.Customer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(csvHeader, ","))

	for _, c := range customers {
		row := []string{
			c.Name,
			c.Email,
			c.Phone,
			c.PurchaseDate.In(s.location).Format(csvDateFormat),
			strings.ToUpper(c.PaymentMethod),
			"R$ " + c.Total.String(),
			formatItems(c.Items),
		}
		bw.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(cell))
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Filename names the export after the UTC calendar date of now.
func Filename(now time.Time) string {
	return fmt.Sprintf("clientes_%s.csv", now.UTC().Format("2006-01-02"))
}

func formatItems(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%d)", item.Plan.Name, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
