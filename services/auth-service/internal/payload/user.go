package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StringList decodes either a JSON string or an array of strings. An empty
// string or null decodes to an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
		} else {
			*l = StringList{s}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a string or an array of strings: %w", err)
	}
	*l = list
	return nil
}

type CheckUserResponse struct {
	Exists bool `json:"exists"`
}

// ErrorResponse is the bare {"error": code} body of the check-user endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	Username            string     `json:"username"            validate:"required_without_all=Email Mobile"`
	Email               string     `json:"email"               validate:"required_without_all=Username Mobile"`
	Mobile              string     `json:"mobile"              validate:"required_without_all=Username Email"`
	Password            string     `json:"password"            validate:"required"`
	Name                string     `json:"name"`
	Gender              string     `json:"gender"`
	DateOfBirth         string     `json:"dateOfBirth"`
	HomeTown            string     `json:"homeTown"`
	Profession          string     `json:"profession"`
	ProofDocument       string     `json:"proofDocument"`
	ProofDocumentNumber string     `json:"proofDocumentNumber"`
	FacebookProfileID   string     `json:"facebookProfileId"`
	FacebookPages       StringList `json:"facebookPages"`
	InstaProfileID      string     `json:"instaProfileId"`
	TwitterProfileID    string     `json:"twitterProfileId"`
	GoogleProfileID     string     `json:"googleProfileId"`
	YoutubeProfileID    string     `json:"youtubeProfileId"`
	YoutubeChannels     StringList `json:"youtubeChannels"`
	WhatsappProfileID   string     `json:"whatsappProfileId"`
	WhatsappChannels    StringList `json:"whatsappChannels"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

// AccountResponse is the public projection of a local account. It never
// carries the password digest.
type AccountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Source   string `json:"source"`
}

// RegisteredAccountResponse extends AccountResponse with the linked channels
// returned on registration. Lists are always present, possibly empty.
type RegisteredAccountResponse struct {
	ID                string   `json:"id"`
	Username          string   `json:"username,omitempty"`
	Email             string   `json:"email,omitempty"`
	Name              string   `json:"name,omitempty"`
	Mobile            string   `json:"mobile,omitempty"`
	FacebookProfileID string   `json:"facebookProfileId,omitempty"`
	FacebookPages     []string `json:"facebookPages"`
	YoutubeChannels   []string `json:"youtubeChannels"`
	WhatsappChannels  []string `json:"whatsappChannels"`
	Source            string   `json:"source"`
}

type LoginResponse struct {
	OK   bool            `json:"ok"`
	User AccountResponse `json:"user"`
}

type RegisterResponse struct {
	OK   bool                      `json:"ok"`
	User RegisteredAccountResponse `json:"user"`
}
