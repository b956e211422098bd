package authapi

import (
	"bytes"
	"encoding/json"
)

// ID accepts either a JSON string or a JSON number; the booking API is not
// consistent about which one it sends for user ids.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// AuthData is the payload of /auth/login and /auth/google.
type AuthData struct {
	ID                 ID     `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	AccessTokenExpires *int64 `json:"accessTokenExpires,omitempty"`
}

// RefreshData is the payload of /auth/refresh.
type RefreshData struct {
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	AccessTokenExpires *int64 `json:"accessTokenExpires,omitempty"`
}

// Profile is the body of /user/profile. It is not wrapped in a data envelope.
type Profile struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// envelope is the {data, message} wrapper used by the auth endpoints.
type envelope[T any] struct {
	Data    *T     `json:"data"`
	Message string `json:"message"`
}

type errorBody struct {
	Message string `json:"message"`
}
