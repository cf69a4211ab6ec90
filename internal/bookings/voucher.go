package bookings

import (
	"bytes"
	"html/template"
)

var voucherTmpl = template.Must(template.New("voucher").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Booking {{.Reference}}</title></head>
<body>
<h1>Hotel voucher</h1>
<table>
<tr><th>Reference</th><td>{{.Reference}}</td></tr>
<tr><th>Confirmation</th><td>{{.ConfirmationNumber}}</td></tr>
<tr><th>Hotel</th><td>{{.HotelID}}</td></tr>
<tr><th>Check-in</th><td>{{.Stay.CheckIn}}</td></tr>
<tr><th>Check-out</th><td>{{.Stay.CheckOut}}</td></tr>
<tr><th>Rooms</th><td>{{len .Stay.Rooms}}</td></tr>
<tr><th>Total paid</th><td>{{.Currency}} {{.Price.Total}}</td></tr>
</table>
<h2>Guests</h2>
<ul>{{range .Guests}}
<li>{{.Title}} {{.FirstName}} {{.LastName}} ({{.Type}})</li>{{end}}
</ul>
<p>Contact: {{.Contact.Name}}, {{.Contact.Phone}}, {{.Contact.Email}}</p>
{{with .SpecialRequests}}<p>Special requests: {{.}}</p>{{end}}
{{if .Refundable}}<h2>Cancellation</h2>
<ul>{{range .CancellationRules}}
<li>{{.From}} to {{.To}}: {{.Charge}}</li>{{end}}
</ul>{{else}}<p>Non-refundable.</p>{{end}}
</body>
</html>
`))

// RenderVoucher renders the HTML voucher of a confirmed booking.
func RenderVoucher(b *Booking) ([]byte, error) {
	var buf bytes.Buffer
	if err := voucherTmpl.Execute(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func voucherKey(b *Booking) string {
	return "vouchers/" + b.CompanyID + "/" + b.Reference + ".html"
}
