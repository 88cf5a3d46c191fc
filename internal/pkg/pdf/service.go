// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateConfirmation generates a PDF order confirmation for a submitted
// order
func (s *Service) GenerateConfirmation(record *order.Record) (*bytes.Buffer, error) {
	data := ConfirmationData{
		DocumentNumber: fmt.Sprintf("BEK-%s", record.OrderNumber),
		DocumentDate:   time.Now().Format("2006-01-02"),
		Order:          record,
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			OrgNr:   s.config.App.CompanyOrg,
			Website: s.config.App.CompanyWeb,
		},
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	err = pdfg.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data ConfirmationData) (string, error) {
	tmpl := template.Must(template.New("confirmation").Parse(confirmationTemplate))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// ConfirmationData represents the data passed to the confirmation template
type ConfirmationData struct {
	DocumentNumber string        `json:"document_number"`
	DocumentDate   string        `json:"document_date"`
	Order          *order.Record `json:"order"`
	Company        CompanyInfo   `json:"company"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	OrgNr   string `json:"org_nr"`
	Website string `json:"website"`
}

// Order confirmation HTML template. Prices are tax inclusive, in whole
// kronor.
const confirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Orderbekräftelse {{.DocumentNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .document-info {
            text-align: right;
            flex: 1;
        }
        .document-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .order-details {
            margin-bottom: 30px;
        }
        .order-details table {
            width: 100%;
        }
        .order-details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .order-details .label {
            font-weight: bold;
            width: 150px;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col {
            text-align: right;
            width: 100px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 120px;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>Org.nr: {{.Company.OrgNr}}</p>
            <p>{{.Company.Website}}</p>
        </div>
        <div class="document-info">
            <div class="document-title">ORDERBEKRÄFTELSE</div>
            <p><strong>Dokument:</strong> {{.DocumentNumber}}</p>
            <p><strong>Datum:</strong> {{.DocumentDate}}</p>
            <p><strong>Order:</strong> {{.Order.OrderNumber}}</p>
        </div>
    </div>

    <div class="order-details">
        <table>
            <tr>
                <td class="label">Orderdatum:</td>
                <td>{{.Order.CreatedAt.Format "2006-01-02"}}</td>
                <td class="label" style="text-align: right;">Status:</td>
                <td style="text-align: right;">{{.Order.Status}}</td>
            </tr>
            <tr>
                <td class="label">Kundtyp:</td>
                <td>{{.Order.CustomerType}}</td>
                <td class="label" style="text-align: right;">E-post:</td>
                <td style="text-align: right;">{{.Order.CustomerEmail}}</td>
            </tr>
        </table>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Tjänst</th>
                <th class="qty-col">Antal</th>
                <th class="price-col">Månadspris</th>
                <th class="price-col">Startavgift</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{.MonthlyPrice}} kr</td>
                <td class="price-col">{{.SetupPrice}} kr</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Per månad:</td>
                <td class="amount">{{.Order.MonthlyTotal}} kr/mån</td>
            </tr>
            <tr>
                <td class="label">Startavgifter:</td>
                <td class="amount">{{.Order.SetupTotal}} kr</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Alla priser inklusive moms.</p>
        <p>Tack för din beställning! Frågor? Besök {{.Company.Website}}</p>
    </div>
</body>
</html>
`
