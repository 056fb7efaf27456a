package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService pushes back-office notifications to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// OrderNotification contains order data for the admin notification.
type OrderNotification struct {
	OrderNumber   string
	CustomerName  string
	CustomerPhone string
	Items         []OrderItemNotification
	TotalAmount   float64
	Currency      string
}

// OrderItemNotification is one line of the notification.
type OrderItemNotification struct {
	Name     string
	Quantity int
}

// NotifyNewOrder formats and sends a new-order message to the admin chat.
func (s *TelegramService) NotifyNewOrder(n OrderNotification) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("<b>New order %s</b>\n", n.OrderNumber))
	text.WriteString(fmt.Sprintf("Customer: %s (%s)\n", n.CustomerName, n.CustomerPhone))
	for _, item := range n.Items {
		text.WriteString(fmt.Sprintf("• %s × %d\n", item.Name, item.Quantity))
	}
	text.WriteString(fmt.Sprintf("Total: %.2f %s", n.TotalAmount, n.Currency))

	return s.SendMessage(s.adminChatID, text.String())
}
