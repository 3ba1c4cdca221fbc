package accounts

import (
	"context"
	"fmt"
)

const (
	getFriendsEndpoint     = "/api/friends/get-friends"
	sendGameInviteEndpoint = "/api/game/sendgameinvite"
	getGameInvitesEndpoint = "/api/game/getgameinvites"
	deleteInviteEndpoint   = "/api/game/deleteinvite"
)

// Friend is an entry of the player's friends list.
type Friend struct {
	UserID          string `json:"_id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageURL"`
	GameMoney       int64  `json:"gameMoney"`
}

// GameInvite is a pending invite to a friend's room.
type GameInvite struct {
	Inviter  Friend `json:"inviter"`
	RoomID   string `json:"roomId"`
	GameType string `json:"gameType"`
}

// Friends returns the player's friends list.
func (c *Client) Friends(ctx context.Context, userID string) ([]Friend, error) {
	var out struct {
		Friends []Friend `json:"friends"`
		Error   string   `json:"error"`
	}
	if err := c.postOK(ctx, getFriendsEndpoint, map[string]string{"userId": userID}, &out); err != nil {
		return nil, fmt.Errorf("fetch friends: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("fetch friends: %s", out.Error)
	}
	return out.Friends, nil
}

// SendGameInvite invites a friend into the given room.
func (c *Client) SendGameInvite(ctx context.Context, friendID, inviterID, roomID, gameType string) error {
	payload := map[string]string{
		"userId":    friendID,
		"inviterId": inviterID,
		"roomId":    roomID,
		"gameType":  gameType,
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.postOK(ctx, sendGameInviteEndpoint, payload, &out); err != nil {
		return fmt.Errorf("send game invite: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("send game invite: %s", out.Message)
	}
	return nil
}

// GameInvites returns the player's pending game invites.
func (c *Client) GameInvites(ctx context.Context, userID string) ([]GameInvite, error) {
	var out struct {
		Success     bool         `json:"success"`
		Message     string       `json:"message"`
		GameInvites []GameInvite `json:"gameInvites"`
	}
	if err := c.postOK(ctx, getGameInvitesEndpoint, map[string]string{"userId": userID}, &out); err != nil {
		return nil, fmt.Errorf("fetch game invites: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("fetch game invites: %s", out.Message)
	}
	return out.GameInvites, nil
}

// DeleteInvite removes the invite for roomID from the player's pending list.
func (c *Client) DeleteInvite(ctx context.Context, userID, roomID string) error {
	payload := map[string]string{"userId": userID, "roomId": roomID}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.postOK(ctx, deleteInviteEndpoint, payload, &out); err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("delete invite: %s", out.Message)
	}
	return nil
}
