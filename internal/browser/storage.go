package browser

import (
	"encoding/json"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

//Cookie represents one browser cookie inside a stored auth state
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

//LocalStorageItem is one key/value pair of an origin's localStorage
type LocalStorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

//OriginState holds the localStorage snapshot for one origin
type OriginState struct {
	Origin       string             `json:"origin"`
	LocalStorage []LocalStorageItem `json:"localStorage"`
}

// AuthState is the serialized logged-in session: cookies plus per-origin
// storage. It is what the vault encrypts and what seeds headless contexts.
type AuthState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins"`
}

// CaptureAuthState snapshots the context's cookies and storage.
func CaptureAuthState(ctx playwright.BrowserContext) (*AuthState, error) {
	raw, err := ctx.StorageState()
	if err != nil {
		return nil, fmt.Errorf("could not capture storage state: %w", err)
	}

	state := &AuthState{}
	for _, c := range raw.Cookies {
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		state.Cookies = append(state.Cookies, cookie)
	}
	for _, o := range raw.Origins {
		origin := OriginState{Origin: o.Origin}
		for _, item := range o.LocalStorage {
			origin.LocalStorage = append(origin.LocalStorage, LocalStorageItem{Name: item.Name, Value: item.Value})
		}
		state.Origins = append(state.Origins, origin)
	}
	return state, nil
}

func ParseAuthState(data []byte) (*AuthState, error) {
	state := &AuthState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("could not parse auth state: %w", err)
	}
	return state, nil
}

func (s *AuthState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// ToOptional converts the snapshot into the form NewContext accepts.
func (s *AuthState) ToOptional() *playwright.OptionalStorageState {
	out := &playwright.OptionalStorageState{}
	for _, c := range s.Cookies {
		out.Cookies = append(out.Cookies, c.ToPlaywright())
	}
	for _, o := range s.Origins {
		origin := playwright.Origin{Origin: o.Origin}
		for _, item := range o.LocalStorage {
			origin.LocalStorage = append(origin.LocalStorage, playwright.NameValue{Name: item.Name, Value: item.Value})
		}
		out.Origins = append(out.Origins, origin)
	}
	return out
}

func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	pwCookie := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}

	if c.Expires > 0 {
		pwCookie.Expires = playwright.Float(c.Expires)
	}

	if c.HTTPOnly {
		pwCookie.HttpOnly = playwright.Bool(true)
	}

	if c.Secure {
		pwCookie.Secure = playwright.Bool(true)
	}

	switch c.SameSite {
	case "Lax":
		pwCookie.SameSite = playwright.SameSiteAttributeLax
	case "Strict":
		pwCookie.SameSite = playwright.SameSiteAttributeStrict
	case "None":
		pwCookie.SameSite = playwright.SameSiteAttributeNone
	}

	return pwCookie
}
