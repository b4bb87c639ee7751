package core

import "time"

// Request types

// BuildRequest is the complete character build payload collected by the multi-step form
type BuildRequest struct {
	Basics      BasicsInput       `json:"basics"`
	Traits      TraitsInput       `json:"traits"`
	HP          *int              `json:"hp,omitempty" validate:"omitempty,min=0,max=9"`
	Defense     DefenseInput      `json:"defense"`
	Experiences []ExperienceInput `json:"experiences" validate:"max=20"`
	Gear        GearInput         `json:"gear"`
	Inventory   []InventoryInput  `json:"inventory" validate:"max=100"`
}

type BasicsInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Pronouns    string `json:"pronouns" validate:"max=50"`
	Level       int    `json:"level" validate:"required,min=1,max=10"`
	HeritageID  string `json:"heritageId,omitempty" validate:"max=64"`
	ClassID     string `json:"classId,omitempty" validate:"max=64"`
	SubclassID  string `json:"subclassId,omitempty" validate:"max=64"`
	CommunityID string `json:"communityId,omitempty" validate:"max=64"`
}

// TraitsInput uses pointers so an unassigned slot is distinguishable from +0
type TraitsInput struct {
	Agility   *int `json:"agility"`
	Strength  *int `json:"strength"`
	Finesse   *int `json:"finesse"`
	Instinct  *int `json:"instinct"`
	Presence  *int `json:"presence"`
	Knowledge *int `json:"knowledge"`
}

type DefenseInput struct {
	Evasion    *int   `json:"evasion,omitempty" validate:"omitempty,min=0,max=30"`
	ArmorScore int    `json:"armorScore" validate:"min=0,max=12"`
	ArmorID    string `json:"armorId,omitempty" validate:"max=64"`
}

type ExperienceInput struct {
	Label string `json:"label"`
}

type GearInput struct {
	PrimaryWeaponID   string `json:"primaryWeaponId,omitempty" validate:"max=64"`
	SecondaryWeaponID string `json:"secondaryWeaponId,omitempty" validate:"max=64"`
}

type InventoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      int    `json:"amount"`
}

type TrackerSetRequest struct {
	Value *int `json:"value" validate:"required"`
}

type TrackerClickRequest struct {
	Index int `json:"index" validate:"required,min=1,max=12"`
}

type DualityRollRequest struct {
	Trait    string `json:"trait,omitempty" validate:"omitempty,oneof=agility strength finesse instinct presence knowledge"`
	Modifier int    `json:"modifier" validate:"min=-20,max=20"`
	Label    string `json:"label,omitempty" validate:"max=100"`
}

type StandardRollRequest struct {
	Expression string `json:"expression" validate:"required,max=200"`
	Label      string `json:"label,omitempty" validate:"max=100"`
}

// Response types

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

type CharacterSheetResponse struct {
	CharacterID string            `json:"characterId"`
	OwnerID     string            `json:"ownerId"`
	Name        string            `json:"name"`
	Pronouns    string            `json:"pronouns,omitempty"`
	Level       int               `json:"level"`
	HeritageID  string            `json:"heritageId,omitempty"`
	ClassID     string            `json:"classId,omitempty"`
	SubclassID  string            `json:"subclassId,omitempty"`
	CommunityID string            `json:"communityId,omitempty"`
	Evasion     int               `json:"evasion"`
	ArmorScore  int               `json:"armorScore"`
	Traits      map[string]int    `json:"traits"`
	Trackers    []TrackerResponse `json:"trackers"`
	Experiences []ExperienceEntry `json:"experiences"`
	Weapons     []WeaponEntry     `json:"weapons"`
	ArmorID     string            `json:"armorId,omitempty"`
	Inventory   []InventoryEntry  `json:"inventory"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type ExperienceEntry struct {
	Label    string `json:"label"`
	Modifier int    `json:"modifier"`
}

type WeaponEntry struct {
	Slot     string `json:"slot"`
	WeaponID string `json:"weaponId"`
}

type InventoryEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      int    `json:"amount"`
}

type TrackerResponse struct {
	CharacterID string `json:"characterId,omitempty"`
	Tracker     string `json:"tracker"`
	Value       int    `json:"value"`
	Max         int    `json:"max"`
}

type RollResponse struct {
	RollID      int64  `json:"rollId"`
	CharacterID string `json:"characterId"`
	Dice        string `json:"dice"`
	Rolls       []int  `json:"rolls"`
	Modifier    int    `json:"modifier"`
	Total       int    `json:"total"`
	Fear        *int   `json:"fear"`    // 1 fear, 0 hope, null neutral
	Outcome     string `json:"outcome"` // "hope", "fear" or "neutral"
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

type TraitOptionsResponse struct {
	Assigned  []int `json:"assigned"`
	Remaining []int `json:"remaining"`
	Complete  bool  `json:"complete"`
	Valid     bool  `json:"valid"`
}

type ErrorResponse struct {
	Error     string       `json:"error"`
	Code      string       `json:"code"`
	Details   string       `json:"details,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
}
