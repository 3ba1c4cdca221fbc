package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	getGameMoneyEndpoint    = "/api/game/getgameMoney"
	updateGameMoneyEndpoint = "/api/game/updategameMoney"
)

type balanceRequest struct {
	UserID    string `json:"userId"`
	GameMoney *int64 `json:"gameMoney,omitempty"`
}

type balanceResponse struct {
	Success     bool   `json:"success"`
	GameMoney   int64  `json:"gameMoney"`
	Message     string `json:"message"`
	ForceLogout bool   `json:"forceLogout"`
}

// FetchBalance returns the player's authoritative game balance.
func (c *Client) FetchBalance(ctx context.Context, userID string) (int64, error) {
	var out balanceResponse
	if err := c.postOK(ctx, getGameMoneyEndpoint, balanceRequest{UserID: userID}, &out); err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	if !out.Success {
		return 0, fmt.Errorf("fetch balance: %s", out.Message)
	}
	return out.GameMoney, nil
}

// PersistBalance writes the balance observed in a room update back to the
// account service and returns the stored value. An unauthorized or
// force-logout response returns ErrForceLogout; the caller must end the
// session rather than retry.
func (c *Client) PersistBalance(ctx context.Context, userID string, amount int64) (int64, error) {
	status, body, err := c.post(ctx, updateGameMoneyEndpoint, balanceRequest{UserID: userID, GameMoney: &amount})
	if err != nil {
		return 0, fmt.Errorf("persist balance: %w", err)
	}

	var out balanceResponse
	if len(body) > 0 {
		// A body that does not parse still carries the status code, which is
		// enough to classify the failure below.
		if jsonErr := json.Unmarshal(body, &out); jsonErr != nil && status >= 200 && status < 300 {
			return 0, fmt.Errorf("persist balance: unmarshal response: %w", jsonErr)
		}
	}

	if status == http.StatusUnauthorized || out.ForceLogout || out.Message == "Unauthorized" {
		return 0, ErrForceLogout
	}
	if status < 200 || status >= 300 || !out.Success {
		return 0, fmt.Errorf("persist balance: status %d: %s", status, out.Message)
	}
	return out.GameMoney, nil
}
