package storage

import "time"

// UserRecord represents a user account in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	AccountType  string     `db:"account_type"` // "permanent" or "temp"
	CreatedAt    time.Time  `db:"created_at"`
	ExpiresAt    *time.Time `db:"expires_at"` // nil for permanent
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// SessionRecord represents an active user session
type SessionRecord struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// CharacterRecord is a row in the characters table. Empty reference ids are stored as NULL.
type CharacterRecord struct {
	CharacterID string    `db:"character_id"`
	OwnerID     string    `db:"owner_id"`
	Name        string    `db:"name"`
	Pronouns    string    `db:"pronouns"`
	Level       int       `db:"level"`
	HeritageID  string    `db:"heritage_id"`
	ClassID     string    `db:"class_id"`
	SubclassID  string    `db:"subclass_id"`
	CommunityID string    `db:"community_id"`
	Evasion     int       `db:"evasion"`
	ArmorScore  int       `db:"armor_score"`
	CreatedAt   time.Time `db:"created_at"`
}

// StatsRecord is the single character_stats row of a character
type StatsRecord struct {
	CharacterID string `db:"character_id"`
	Agility     int    `db:"agility"`
	Strength    int    `db:"strength"`
	Finesse     int    `db:"finesse"`
	Instinct    int    `db:"instinct"`
	Presence    int    `db:"presence"`
	Knowledge   int    `db:"knowledge"`
	HP          int    `db:"hp"`
	Stress      int    `db:"stress"`
	Hope        int    `db:"hope"`
	ArmorMarked int    `db:"armor_marked"`
}

// ExperienceRecord is a row in character_experiences
type ExperienceRecord struct {
	Label    string `db:"label"`
	Modifier int    `db:"modifier"`
}

// WeaponRecord is a row in character_weapons
type WeaponRecord struct {
	Slot     string `db:"slot"`
	WeaponID string `db:"weapon_id"`
}

// InventoryRecord is a row in character_inventory
type InventoryRecord struct {
	Name        string `db:"name"`
	Description string `db:"description"`
	Amount      int    `db:"amount"`
}

// RollRecord is a row in the append-only rolls table. Fear is 1, 0 or NULL.
type RollRecord struct {
	RollID      int64     `db:"roll_id"`
	UserID      string    `db:"user_id"`
	CharacterID string    `db:"character_id"`
	Dice        string    `db:"dice"`
	Total       int       `db:"total"`
	Fear        *int      `db:"fear"`
	CreatedAt   time.Time `db:"created_at"`
}

// GrantRecord lets a moderator read one player's characters and rolls
type GrantRecord struct {
	ModeratorID string    `db:"moderator_id"`
	PlayerID    string    `db:"player_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	account_type TEXT NOT NULL DEFAULT 'temp' CHECK(account_type IN ('permanent', 'temp')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_account_type ON users(account_type);
CREATE INDEX IF NOT EXISTS idx_users_expires_at ON users(expires_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

CREATE TABLE IF NOT EXISTS catalog_classes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	starting_hp INTEGER NOT NULL CHECK(starting_hp >= 0),
	starting_evasion INTEGER NOT NULL CHECK(starting_evasion >= 0),
	feature TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS catalog_subclasses (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	class_id TEXT NOT NULL REFERENCES catalog_classes(id)
);

CREATE TABLE IF NOT EXISTS catalog_heritages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_communities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_armors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	base_score INTEGER NOT NULL,
	major_threshold INTEGER NOT NULL,
	severe_threshold INTEGER NOT NULL,
	feature TEXT NOT NULL DEFAULT '',
	min_level INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS catalog_weapons (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	trait TEXT NOT NULL,
	weapon_range TEXT NOT NULL,
	damage TEXT NOT NULL,
	feature TEXT NOT NULL DEFAULT '',
	slot TEXT NOT NULL CHECK(slot IN ('primary', 'secondary'))
);

CREATE TABLE IF NOT EXISTS characters (
	character_id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	pronouns TEXT NOT NULL DEFAULT '',
	level INTEGER NOT NULL CHECK(level >= 1),
	heritage_id TEXT REFERENCES catalog_heritages(id),
	class_id TEXT REFERENCES catalog_classes(id),
	subclass_id TEXT REFERENCES catalog_subclasses(id),
	community_id TEXT REFERENCES catalog_communities(id),
	evasion INTEGER NOT NULL DEFAULT 0,
	armor_score INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (owner_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_characters_owner ON characters(owner_id);

CREATE TABLE IF NOT EXISTS character_stats (
	character_id TEXT PRIMARY KEY,
	agility INTEGER NOT NULL CHECK(agility BETWEEN -1 AND 2),
	strength INTEGER NOT NULL CHECK(strength BETWEEN -1 AND 2),
	finesse INTEGER NOT NULL CHECK(finesse BETWEEN -1 AND 2),
	instinct INTEGER NOT NULL CHECK(instinct BETWEEN -1 AND 2),
	presence INTEGER NOT NULL CHECK(presence BETWEEN -1 AND 2),
	knowledge INTEGER NOT NULL CHECK(knowledge BETWEEN -1 AND 2),
	hp INTEGER NOT NULL DEFAULT 0 CHECK(hp BETWEEN 0 AND 9),
	stress INTEGER NOT NULL DEFAULT 0 CHECK(stress BETWEEN 0 AND 6),
	hope INTEGER NOT NULL DEFAULT 0 CHECK(hope BETWEEN 0 AND 6),
	armor_marked INTEGER NOT NULL DEFAULT 0 CHECK(armor_marked BETWEEN 0 AND 9),
	FOREIGN KEY (character_id) REFERENCES characters(character_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS character_armor (
	character_id TEXT PRIMARY KEY,
	armor_id TEXT NOT NULL REFERENCES catalog_armors(id),
	FOREIGN KEY (character_id) REFERENCES characters(character_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS character_experiences (
	character_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	modifier INTEGER NOT NULL,
	PRIMARY KEY (character_id, position),
	FOREIGN KEY (character_id) REFERENCES characters(character_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS character_weapons (
	character_id TEXT NOT NULL,
	slot TEXT NOT NULL CHECK(slot IN ('primary', 'secondary')),
	weapon_id TEXT NOT NULL REFERENCES catalog_weapons(id),
	PRIMARY KEY (character_id, slot),
	FOREIGN KEY (character_id) REFERENCES characters(character_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS character_inventory (
	character_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	amount INTEGER NOT NULL CHECK(amount >= 0),
	PRIMARY KEY (character_id, position),
	FOREIGN KEY (character_id) REFERENCES characters(character_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rolls (
	roll_id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	character_id TEXT NOT NULL,
	dice TEXT NOT NULL CHECK(length(dice) <= 200),
	total INTEGER NOT NULL,
	fear INTEGER CHECK(fear IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (character_id) REFERENCES characters(character_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rolls_user ON rolls(user_id, roll_id);
CREATE INDEX IF NOT EXISTS idx_rolls_character ON rolls(character_id, roll_id);

CREATE TABLE IF NOT EXISTS moderator_grants (
	moderator_id TEXT NOT NULL,
	player_id TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (moderator_id, player_id),
	FOREIGN KEY (moderator_id) REFERENCES users(user_id) ON DELETE CASCADE,
	FOREIGN KEY (player_id) REFERENCES users(user_id) ON DELETE CASCADE
);
`
