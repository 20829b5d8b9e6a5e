package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TicketNumberFromOrderID derives a short human-readable ticket number from
// the order id. The prefix keeps it recognisable on printed tickets; the
// suffix is the first segment of the order UUID, uppercased.
func TicketNumberFromOrderID(orderID uuid.UUID) string {
	compact := strings.ReplaceAll(orderID.String(), "-", "")
	return fmt.Sprintf("TKT-%s", strings.ToUpper(compact[:8]))
}
