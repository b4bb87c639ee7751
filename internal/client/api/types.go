package api

import (
	"encoding/json"
	"time"
)

// Wire types mirror the server's JSON and are kept separate so the client builds on its own.

type ErrorResponse struct {
	Error     string       `json:"error"`
	Code      string       `json:"code"`
	Details   string       `json:"details,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthResponse struct {
	Token       string    `json:"token"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AccountType string    `json:"accountType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AccountType string    `json:"accountType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TraitOptionsResponse struct {
	Assigned  []int `json:"assigned"`
	Remaining []int `json:"remaining"`
	Complete  bool  `json:"complete"`
	Valid     bool  `json:"valid"`
}

// BuildPayload is sent verbatim, the client does not interpret build files
type BuildPayload = json.RawMessage

type BuildResponse struct {
	CharacterID string `json:"characterId"`
}

type CharacterSummary struct {
	CharacterID string    `json:"characterId"`
	Name        string    `json:"name"`
	Pronouns    string    `json:"pronouns,omitempty"`
	Level       int       `json:"level"`
	ClassID     string    `json:"classId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CharacterListResponse struct {
	Characters []CharacterSummary `json:"characters"`
}

type Tracker struct {
	Tracker string `json:"tracker"`
	Value   int    `json:"value"`
	Max     int    `json:"max"`
}

type SheetResponse struct {
	CharacterID string         `json:"characterId"`
	OwnerID     string         `json:"ownerId"`
	Name        string         `json:"name"`
	Pronouns    string         `json:"pronouns,omitempty"`
	Level       int            `json:"level"`
	HeritageID  string         `json:"heritageId,omitempty"`
	ClassID     string         `json:"classId,omitempty"`
	SubclassID  string         `json:"subclassId,omitempty"`
	CommunityID string         `json:"communityId,omitempty"`
	Evasion     int            `json:"evasion"`
	ArmorScore  int            `json:"armorScore"`
	Traits      map[string]int `json:"traits"`
	Trackers    []Tracker      `json:"trackers"`
	Experiences []struct {
		Label    string `json:"label"`
		Modifier int    `json:"modifier"`
	} `json:"experiences"`
	Weapons []struct {
		Slot     string `json:"slot"`
		WeaponID string `json:"weaponId"`
	} `json:"weapons"`
	ArmorID   string `json:"armorId,omitempty"`
	Inventory []struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Amount      int    `json:"amount"`
	} `json:"inventory"`
	CreatedAt time.Time `json:"createdAt"`
}

type TrackerSetRequest struct {
	Value int `json:"value"`
}

type TrackerClickRequest struct {
	Index int `json:"index"`
}

type DualityRollRequest struct {
	Trait    string `json:"trait,omitempty"`
	Modifier int    `json:"modifier"`
	Label    string `json:"label,omitempty"`
}

type StandardRollRequest struct {
	Expression string `json:"expression"`
	Label      string `json:"label,omitempty"`
}

type RollResponse struct {
	RollID      int64  `json:"rollId"`
	CharacterID string `json:"characterId"`
	Dice        string `json:"dice"`
	Rolls       []int  `json:"rolls"`
	Modifier    int    `json:"modifier"`
	Total       int    `json:"total"`
	Fear        *int   `json:"fear"`
	Outcome     string `json:"outcome"`
	Label       string `json:"label,omitempty"`
}

type RollEntry struct {
	RollID      int64     `json:"rollId"`
	CharacterID string    `json:"characterId"`
	Dice        string    `json:"dice"`
	Total       int       `json:"total"`
	Fear        *int      `json:"fear"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RollHistoryResponse struct {
	Rolls []RollEntry `json:"rolls"`
}
