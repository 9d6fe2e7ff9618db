package uploader

import (
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://archiveofourown.org"

// Site holds the remote forms and page markers the uploader drives. They are
// fixed by the remote site; only the base URL is expected to vary.
type Site struct {
	BaseURL string

	LoginPath          string
	UsernameField      string
	PasswordField      string
	LoginSubmit        string
	LoggedInMarker     string
	InvalidLoginPhrase string

	TitleField    string
	ContentField  string
	PostButton    string
	ConfirmMarker string
}

func AO3(baseURL string) Site {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return Site{
		BaseURL: strings.TrimRight(baseURL, "/"),

		LoginPath:          "/users/login",
		UsernameField:      "#user_login",
		PasswordField:      "#user_password",
		LoginSubmit:        "[name='commit']",
		LoggedInMarker:     "ul.user.navigation",
		InvalidLoginPhrase: "Invalid Username or password",

		TitleField:    "#chapter_title",
		ContentField:  "#chapter_content",
		PostButton:    "input[name='commit'][value='Post']",
		ConfirmMarker: "div.chapter",
	}
}

func (s Site) LoginURL() string {
	return s.BaseURL + s.LoginPath
}

func (s Site) NewChapterURL(workID string) string {
	return s.BaseURL + "/works/" + url.PathEscape(workID) + "/chapters/new"
}

// Timeouts bounds every blocking wait of a run.
type Timeouts struct {
	Settle  time.Duration
	Login   time.Duration
	Form    time.Duration
	Confirm time.Duration
	Pause   time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Settle:  2 * time.Second,
		Login:   15 * time.Second,
		Form:    15 * time.Second,
		Confirm: 20 * time.Second,
		Pause:   3 * time.Second,
	}
}
