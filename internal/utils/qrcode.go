package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
)

// GenerateTicketQRCode writes a QR code PNG encoding the ticket number and
// returns the filename.
func GenerateTicketQRCode(ticketNumber, dirPath string) (string, error) {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create QR directory: %w", err)
	}

	filename := fmt.Sprintf("%s.png", strings.ToLower(ticketNumber))
	fullPath := filepath.Join(dirPath, filename)

	if err := qrcode.WriteFile(ticketNumber, qrcode.Medium, 256, fullPath); err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	return filename, nil
}
