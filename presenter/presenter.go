package presenter

import (
	"fmt"
	"strconv"
	"time"

	"cinepay/payment"
)

// View is everything a payment screen needs to render a polling session.
// It is derived from a session snapshot and carries no behavior: all
// transition decisions stay in the payment package.
type View struct {
	Status      string `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	ShowSpinner bool `json:"show_spinner"`

	Provider     string   `json:"provider,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Amount       string   `json:"amount,omitempty"`
	Instructions []string `json:"instructions,omitempty"`

	// CountdownSeconds is the time left in the confirmation window. Only
	// meaningful while waiting; zero once the window is spent.
	CountdownSeconds int `json:"countdown_seconds,omitempty"`

	ShowRetry    bool `json:"show_retry"`
	ShowContinue bool `json:"show_continue"`
	// Dismissable is false mid-payment: the payer must not close the
	// screen while a charge may still land.
	Dismissable bool `json:"dismissable"`
}

// Render maps a session snapshot to its view. Pure: calling it twice with
// the same snapshot yields the same view.
func Render(s payment.Snapshot) View {
	provider := s.Method.Label()

	switch s.State {
	case payment.StateInitiating:
		return View{
			Status:      string(s.State),
			Title:       "Initialisation du paiement...",
			Description: "Connexion avec " + provider,
			ShowSpinner: true,
			Provider:    provider,
		}

	case payment.StateWaiting, payment.StateVerifying:
		view := View{
			Status:           string(s.State),
			Provider:         provider,
			Phone:            s.MSISDN,
			Amount:           FormatAmount(s.Amount),
			CountdownSeconds: countdownSeconds(s),
		}
		if s.State == payment.StateVerifying {
			view.Title = "Vérification du paiement..."
			view.Description = "Confirmation de votre transaction"
			view.ShowSpinner = true
			return view
		}
		view.Title = "Vérifiez votre téléphone"
		view.Instructions = []string{
			"Une notification USSD a été envoyée au " + s.MSISDN,
			"Entrez votre code PIN " + provider,
			"Confirmez le paiement de " + view.Amount,
		}
		view.Description = fmt.Sprintf("Vous avez %d secondes pour confirmer", view.CountdownSeconds)
		return view

	case payment.StateSuccess:
		return View{
			Status:       string(s.State),
			Title:        "Paiement confirmé !",
			Description:  "Votre réservation a été validée avec succès",
			Provider:     provider,
			Amount:       FormatAmount(s.Amount),
			ShowContinue: true,
			Dismissable:  true,
		}

	default: // payment.StateError
		return View{
			Status:      string(s.State),
			Title:       "Paiement échoué",
			Description: s.Message,
			Provider:    provider,
			ShowRetry:   true,
			Dismissable: true,
		}
	}
}

func countdownSeconds(s payment.Snapshot) int {
	budget := time.Duration(s.MaxAttempts) * s.Interval
	left := budget - s.Elapsed
	if left <= 0 {
		return 0
	}

	// round up so the display never reads 0s while polling continues
	return int((left + time.Second - 1) / time.Second)
}

// FormatAmount renders a CFA franc amount with thousands grouping,
// e.g. 5000 becomes "5 000 F".
func FormatAmount(amount int) string {
	digits := strconv.Itoa(amount)

	negative := false
	if digits[0] == '-' {
		negative = true
		digits = digits[1:]
	}

	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, d)
	}

	if negative {
		return "-" + string(grouped) + " F"
	}
	return string(grouped) + " F"
}
