// Package session holds the debug client's mutable state between commands.
package session

import "charforge/internal/client/api"

type Session struct {
	APIBaseURL       string
	Client           *api.Client
	Verbose          bool
	UserID           string
	Username         string
	AuthToken        string
	CurrentCharacter string
	CharacterName    string
	WatchedPlayer    string
	LastRollID       int64
}

func New(baseURL string) *Session {
	return &Session{APIBaseURL: baseURL, Client: api.New(baseURL)}
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) GetClient() *api.Client { return s.Client }
func (s *Session) IsVerbose() bool        { return s.Verbose }

// SetAuth records a login; an empty token clears it
func (s *Session) SetAuth(userID, username, token string) {
	s.UserID, s.Username, s.AuthToken = userID, username, token
	s.Client.SetToken(token)
	if token == "" {
		s.CurrentCharacter, s.CharacterName = "", ""
		s.WatchedPlayer, s.LastRollID = "", 0
	}
}

func (s *Session) GetUserID() string    { return s.UserID }
func (s *Session) GetUsername() string  { return s.Username }
func (s *Session) GetAuthToken() string { return s.AuthToken }

func (s *Session) GetCurrentCharacter() string { return s.CurrentCharacter }

func (s *Session) SetCurrentCharacter(id, name string) {
	s.CurrentCharacter, s.CharacterName = id, name
}

func (s *Session) GetWatchedPlayer() string { return s.WatchedPlayer }

// SetWatchedPlayer switches the moderator feed, restarting from the beginning
func (s *Session) SetWatchedPlayer(id string) {
	if id != s.WatchedPlayer {
		s.LastRollID = 0
	}
	s.WatchedPlayer = id
}

func (s *Session) GetLastRollID() int64 { return s.LastRollID }

func (s *Session) SetLastRollID(id int64) {
	if id > s.LastRollID {
		s.LastRollID = id
	}
}
