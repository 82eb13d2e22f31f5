package mailer

import (
	"fmt"
	"net"
	"net/smtp"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"

	"go.uber.org/zap"
)

// Mailer sends operator alert emails. All sends are best-effort: failures
// are logged and swallowed, and delivery happens off the calling goroutine so
// a slow SMTP server cannot block a stock movement or import.
type Mailer struct {
	host    string
	port    string
	from    string
	manager string
	log     *zap.Logger
}

// New builds a mailer from configuration. Alerts are disabled (logged only)
// when no SMTP host is configured.
func New(cfg *config.MailConfig, log *zap.Logger) *Mailer {
	return &Mailer{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		from:    cfg.FromAddress,
		manager: cfg.ManagerEmail,
		log:     log,
	}
}

// LowStockAlert asks the operator to reorder a product running low.
func (m *Mailer) LowStockAlert(product *model.Product) {
	subject := fmt.Sprintf("Low Stock Alert: %s", product.Name)
	body := fmt.Sprintf(`Dear Manager,

The following product is running low on stock:

Product: %s
SKU: %s
Current Stock: %d
Reorder Level: %d

Please consider reordering this product soon.

Best regards,
Inventory Plus System
`, product.Name, product.SKU, product.QuantityInStock, product.ReorderLevel)

	m.send(subject, body)
}

// ExpiryAlert warns the operator about a perishable product close to its
// expiry date.
func (m *Mailer) ExpiryAlert(product *model.Product) {
	expiry := ""
	if product.ExpiryDate != nil {
		expiry = product.ExpiryDate.Format("2006-01-02")
	}
	subject := fmt.Sprintf("Expiry Alert: %s", product.Name)
	body := fmt.Sprintf(`Dear Manager,

The following perishable product is approaching its expiry date:

Product: %s
SKU: %s
Expiry Date: %s
Current Stock: %d

Please take necessary action.

Best regards,
Inventory Plus System
`, product.Name, product.SKU, expiry, product.QuantityInStock)

	m.send(subject, body)
}

func (m *Mailer) send(subject, body string) {
	if m.host == "" {
		m.log.Info("mail transport not configured, alert logged only",
			zap.String("subject", subject))
		return
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, m.manager, subject, body))

	go func() {
		addr := net.JoinHostPort(m.host, m.port)
		if err := smtp.SendMail(addr, nil, m.from, []string{m.manager}, msg); err != nil {
			m.log.Warn("failed to send alert email",
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}
