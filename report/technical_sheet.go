package report

import (
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/comal-erp/comal-erp/internal/costing"
)

var sheetTemplate = template.Must(template.New("technical-sheet").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Technical Sheet {{.Code}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 2em; }
h1 { font-size: 18px; margin-bottom: 0; }
h2 { font-size: 13px; margin: 1.2em 0 0.3em; border-bottom: 1px solid #999; }
table { width: 100%; border-collapse: collapse; margin-top: 0.4em; }
th, td { text-align: left; padding: 3px 6px; border-bottom: 1px solid #ddd; }
td.num, th.num { text-align: right; }
tr.subtotal td { font-weight: bold; border-top: 1px solid #999; }
tr.total td { font-weight: bold; border-top: 2px solid #333; font-size: 13px; }
.meta { color: #555; margin-top: 0.2em; }
.alert { color: #b00020; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p class="meta">{{.Code}} &middot; {{.KindLabel}} &middot; generated {{.GeneratedAt}}</p>

{{if .Yield}}
<h2>Yield</h2>
<table>
<tr><th>Purchase price</th><th class="num">Yield</th><th class="num">Waste</th><th class="num">Net unit price</th><th class="num">Processed unit price</th></tr>
<tr>
<td>{{.PriceLabel}}</td>
<td class="num">{{.Yield.YieldLabel}}</td>
<td class="num">{{.Yield.WasteLabel}}</td>
<td class="num">{{.Yield.NetLabel}}</td>
<td class="num">{{.Yield.ProcessedLabel}}</td>
</tr>
</table>
{{if .Yield.QualityNote}}<p class="alert">{{.Yield.QualityNote}}</p>{{end}}
{{end}}

{{if .Groups}}
<h2>Composition</h2>
<table>
<tr><th>Code</th><th>Ingredient</th><th>Unit</th><th class="num">Quantity</th><th class="num">Unit cost</th><th class="num">Total</th></tr>
{{range .Groups}}
<tr><td colspan="6"><strong>{{.Category}}</strong></td></tr>
{{range .Lines}}
<tr><td>{{.Code}}</td><td>{{.Name}}</td><td>{{.Unit}}</td><td class="num">{{.QuantityLabel}}</td><td class="num">{{.UnitCostLabel}}</td><td class="num">{{.TotalLabel}}</td></tr>
{{end}}
<tr class="subtotal"><td colspan="5">Subtotal {{.Category}}</td><td class="num">{{.SubtotalLabel}}</td></tr>
{{end}}
<tr class="total"><td colspan="5">Total cost</td><td class="num">{{.TotalLabel}}</td></tr>
</table>
{{end}}

{{if .Alert}}
<h2>Cost position</h2>
<table>
<tr><th class="num">Sale price</th><th class="num">Price ex tax</th><th class="num">Cost</th><th class="num">Cost %</th><th class="num">Target %</th></tr>
<tr>
<td class="num">{{.PriceLabel}}</td>
<td class="num">{{.Alert.PriceExTaxLabel}}</td>
<td class="num">{{.TotalLabel}}</td>
<td class="num">{{if .Alert.Exceeded}}<span class="alert">{{.Alert.CostPercentLabel}}</span>{{else}}{{.Alert.CostPercentLabel}}{{end}}</td>
<td class="num">{{.Alert.TargetLabel}}</td>
</tr>
</table>
{{end}}
</body>
</html>
`))

type sheetYield struct {
	YieldLabel     string
	WasteLabel     string
	NetLabel       string
	ProcessedLabel string
	QualityNote    string
}

type sheetLine struct {
	Code          string
	Name          string
	Unit          string
	QuantityLabel string
	UnitCostLabel string
	TotalLabel    string
}

type sheetGroup struct {
	Category      string
	Lines         []sheetLine
	SubtotalLabel string
}

type sheetAlert struct {
	PriceExTaxLabel  string
	CostPercentLabel string
	TargetLabel      string
	Exceeded         bool
}

type sheetData struct {
	Code        string
	Name        string
	KindLabel   string
	GeneratedAt string
	PriceLabel  string
	TotalLabel  string
	Yield       *sheetYield
	Groups      []sheetGroup
	Alert       *sheetAlert
}

var kindLabels = map[costing.Kind]string{
	costing.KindRawMaterial: "Raw material",
	costing.KindSubRecipe:   "Sub-recipe",
	costing.KindDish:        "Dish",
}

// TechnicalSheetHTML renders the printable technical sheet for one costed
// product. The output is the HTML document handed to Gotenberg.
func TechnicalSheetHTML(cost *costing.ProductCost, now time.Time) (string, error) {
	p := message.NewPrinter(language.English)
	money := func(v float64) string { return p.Sprintf("$%.2f", costing.Round2(v)) }
	percent := func(v float64) string { return p.Sprintf("%.2f%%", costing.Round2(v)) }
	qty := func(v float64) string { return p.Sprintf("%v", v) }

	data := sheetData{
		Code:        cost.Code,
		Name:        cost.Name,
		KindLabel:   kindLabels[cost.Kind],
		GeneratedAt: now.Format("2006-01-02 15:04"),
		PriceLabel:  money(cost.Price),
		TotalLabel:  money(cost.Breakdown.TotalCost),
	}

	if cost.Yield != nil {
		data.Yield = &sheetYield{
			YieldLabel:     percent(cost.Yield.YieldPercent),
			WasteLabel:     percent(cost.Yield.WastePercent),
			NetLabel:       money(cost.Yield.NetUnitPrice),
			ProcessedLabel: money(cost.Yield.ProcessedUnitPrice),
			QualityNote:    cost.Yield.QualityNote,
		}
	}

	for _, group := range cost.Breakdown.Groups {
		sg := sheetGroup{
			Category:      group.Category,
			SubtotalLabel: money(group.Subtotal),
		}
		for _, line := range group.Lines {
			sg.Lines = append(sg.Lines, sheetLine{
				Code:          line.Code,
				Name:          line.Name,
				Unit:          line.Unit,
				QuantityLabel: qty(line.Quantity),
				UnitCostLabel: money(line.UnitCost),
				TotalLabel:    money(line.Total),
			})
		}
		data.Groups = append(data.Groups, sg)
	}

	if cost.Alert != nil {
		alert := &sheetAlert{
			PriceExTaxLabel:  money(cost.Alert.PriceExTax),
			CostPercentLabel: percent(cost.Alert.CostPercent),
			TargetLabel:      "-",
			Exceeded:         cost.Alert.Alert,
		}
		if cost.Alert.IdealCostPercent != nil {
			alert.TargetLabel = percent(*cost.Alert.IdealCostPercent)
		}
		data.Alert = alert
	}

	var buf strings.Builder
	if err := sheetTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
