package settlement

import (
	"fmt"
	"strings"
	"time"
)

const receiptDateLayout = "02/01/2006"

var methodLabels = map[PaymentMethod]string{
	MethodCash:     "EFECTIVO",
	MethodTransfer: "TRANSFERENCIA",
	MethodCheque:   "CHEQUE",
}

// RenderReceipt produces the line-oriented settlement summary used for
// clipboard copy and notifications. Field order and labels are fixed: the same
// inputs must always yield the same bytes, the receipt doubles as an audit
// artifact.
func RenderReceipt(res Result, at time.Time) string {
	var b strings.Builder

	b.WriteString("RESUMEN DE COBRANZA\n")
	fmt.Fprintf(&b, "Fecha: %s\n", at.Format(receiptDateLayout))
	b.WriteString("\n")

	b.WriteString("DOCUMENTOS\n")
	for _, adj := range res.Documents {
		days := fmt.Sprintf("%d dias", adj.Days)
		if !adj.DaysKnown {
			days = "sin fecha"
		}
		fmt.Fprintf(&b, "  %s | %s | %s | tasa %.2f%% | ajuste $%.2f | importe $%.2f\n",
			adj.Number, days, adj.Rule, adj.Rate*100, adj.Amount, adj.Final)
	}
	fmt.Fprintf(&b, "Total documentos: $%.2f\n", res.Totals.Gross)
	fmt.Fprintf(&b, "Ajuste documentos: $%.2f\n", res.Totals.DocAdjustment)
	fmt.Fprintf(&b, "Neto documentos: $%.2f\n", res.Totals.Net)
	b.WriteString("\n")

	b.WriteString("VALORES\n")
	for _, vr := range res.Values {
		label, ok := methodLabels[vr.Item.Method]
		if !ok {
			label = strings.ToUpper(string(vr.Item.Method))
		}
		if vr.Cheque != nil {
			cobro := "sin fecha"
			if !vr.Cheque.Incomplete {
				cobro = vr.Cheque.CollectionDate.Format(receiptDateLayout)
			}
			fmt.Fprintf(&b, "  %s nro %s | cobro %s | %d dias | interes $%.2f | neto $%.2f\n",
				label, vr.Cheque.ChequeNumber, cobro, vr.Cheque.DaysTotal,
				vr.Cheque.InterestAmount, vr.Cheque.NetAmount)
		} else {
			fmt.Fprintf(&b, "  %s | $%.2f\n", label, vr.Nominal)
		}
	}
	fmt.Fprintf(&b, "Total valores: $%.2f\n", res.Totals.ValuesNominal)
	fmt.Fprintf(&b, "Interes cheques: $%.2f\n", res.Totals.ChequeInterest)
	if res.Totals.ChequePromoDiscount != 0 {
		fmt.Fprintf(&b, "Descuento promo cheques: $%.2f\n", res.Totals.ChequePromoDiscount)
	}
	fmt.Fprintf(&b, "Ajuste aplicado a valores: $%.2f\n", res.Totals.AdjustmentOnValues)
	fmt.Fprintf(&b, "Neto a imputar: $%.2f\n", res.Totals.NetToApply)
	b.WriteString("\n")

	fmt.Fprintf(&b, "SALDO: $%.2f\n", res.Totals.Diff)
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "AVISO: %s\n", w)
	}
	return b.String()
}
