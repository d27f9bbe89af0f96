package infra

// pdf.go: Printable shopping list using go-pdf/fpdf.
// A4 portrait with:
//   - List name and period header
//   - Item table grouped by category (name, quantity, planned, paid)
//   - Planned / spent / budget totals and the budget status

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bfrpaulondev/fitness-api/internal/budget"
	"github.com/bfrpaulondev/fitness-api/internal/model"

	"github.com/go-pdf/fpdf"
)

var estadoEtiqueta = map[budget.Status]string{
	budget.StatusOK:   "Dentro del presupuesto",
	budget.StatusWarn: "Cerca del limite",
	budget.StatusOver: "Presupuesto superado",
}

// GenerateListaPDF renders the list and its summary; the PDF is returned in memory.
func GenerateListaPDF(lista *model.ListaCompra, sum budget.Summary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(lista.Nombre, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(lista.Nombre), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Periodo %04d-%02d", lista.Anio, lista.Mes), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	col1 := contentW * 0.46 // name
	col2 := contentW * 0.18 // qty + unit
	col3 := contentW * 0.18 // planned
	col4 := contentW * 0.18 // paid

	// ── Items by category ─────────────────────────────────────────────────────
	porCategoria := make(map[string][]model.ItemLista)
	for _, it := range lista.Items {
		c := it.Categoria
		if c == "" {
			c = "otros"
		}
		porCategoria[c] = append(porCategoria[c], it)
	}
	categorias := make([]string, 0, len(porCategoria))
	for c := range porCategoria {
		categorias = append(categorias, c)
	}
	sort.Strings(categorias)

	for _, c := range categorias {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(contentW, 6, tr(c), "", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Cantidad", "B", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, "Estimado", "B", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "Pagado", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, it := range porCategoria[c] {
			nombre := it.Nombre
			if it.Comprado {
				nombre = "[x] " + nombre
			}
			pagado := "-"
			if it.Comprado {
				pagado = it.PrecioPagado.StringFixed(2)
			}
			pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, it.Cantidad.String()+" "+tr(it.Unidad), "", 0, "R", false, 0, "")
			pdf.CellFormat(col3, 5, it.PrecioPlaneado.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.CellFormat(col4, 5, pagado, "", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	filas := []struct{ label, valor string }{
		{"Estimado", sum.Planned.StringFixed(2)},
		{"Gastado", sum.Spent.StringFixed(2)},
		{"Presupuesto", sum.Budget.StringFixed(2)},
		{"Restante", sum.Remaining.StringFixed(2)},
	}
	for _, f := range filas {
		pdf.CellFormat(col1+col2+col3, 5, f.label+":", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, f.valor, "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr(estadoEtiqueta[sum.Status]), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
