package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// EffectKind is the category of an effect
type EffectKind string

const (
	EffectKindGame    EffectKind = "game"
	EffectKindOverlay EffectKind = "overlay"
	EffectKindSFX     EffectKind = "sfx"
)

// ProfileType identifies the platform a user profile belongs to
type ProfileType string

const (
	ProfileTwitch       ProfileType = "twitch"
	ProfileTikTok       ProfileType = "tiktok"
	ProfileYouTube      ProfileType = "youtube"
	ProfileDiscord      ProfileType = "discord"
	ProfileTikTokGifter ProfileType = "tiktok-gifter"
	ProfilePulsoid      ProfileType = "pulsoid"
)

// EffectName is either a bare display string or an object with a public
// display name and an optional sort key. Both forms round-trip.
type EffectName struct {
	Public string
	Sort   string
	// Structured is true when the name was (or should be) encoded as an object
	Structured bool
}

type effectNameObject struct {
	Public string `json:"public"`
	Sort   string `json:"sort,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form. Any other
// scalar is kept as its raw text so the name can still be shown.
func (n *EffectName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return errors.New("empty effect name")
	case bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = EffectName{Public: s}
	case data[0] == '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*n = EffectName{Structured: true}
		// a non-string public or sort leaves that part empty
		_ = json.Unmarshal(obj["public"], &n.Public)
		_ = json.Unmarshal(obj["sort"], &n.Sort)
	default:
		*n = EffectName{Public: string(data)}
	}
	return nil
}

// MarshalJSON writes the form the name was read in
func (n EffectName) MarshalJSON() ([]byte, error) {
	if !n.Structured {
		return json.Marshal(n.Public)
	}
	return json.Marshal(effectNameObject{Public: n.Public, Sort: n.Sort})
}

// Effect describes the effect being requested
type Effect struct {
	EffectID        string       `json:"effectID"`
	Type            EffectKind   `json:"type"`
	Name            EffectName   `json:"name"`
	Image           string       `json:"image"`
	Note            string       `json:"note,omitempty"`
	Description     string       `json:"description,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Disabled        bool         `json:"disabled,omitempty"`
	New             bool         `json:"new,omitempty"`
	Inactive        bool         `json:"inactive,omitempty"`
	Admin           bool         `json:"admin,omitempty"`
	Category        []string     `json:"category,omitempty"`
	Group           []string     `json:"group,omitempty"`
	TikTok          *TikTokGift  `json:"tiktok,omitempty"`
	SessionCooldown *Cooldown    `json:"sessionCooldown,omitempty"`
	UserCooldown    *Cooldown    `json:"userCooldown,omitempty"`
	Scale           *EffectScale `json:"scale,omitempty"`
	Hidden          bool         `json:"hidden,omitempty"`
	Unavailable     bool         `json:"unavailable,omitempty"`
}

// TikTokGift links an effect to a TikTok gift
type TikTokGift struct {
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	ID       int             `json:"id"`
	Duration *EffectDuration `json:"duration,omitempty"`
}

// EffectDuration is a configured effect duration
type EffectDuration struct {
	Value     float64 `json:"value"`
	Immutable bool    `json:"immutable,omitempty"`
}

// Cooldown is a running cooldown window
type Cooldown struct {
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
}

// EffectScale describes dynamic price scaling
type EffectScale struct {
	Duration   float64 `json:"duration"`
	Percent    float64 `json:"percent"`
	StartTime  float64 `json:"startTime"`
	StartScale float64 `json:"startScale"`
}

// User is a sanitized user record
type User struct {
	SubjectID string      `json:"ccUID"`
	Image     string      `json:"image"`
	Name      string      `json:"name"`
	Profile   ProfileType `json:"profile"`
	OriginID  string      `json:"originID"`
}

// SourceDetails describes what triggered a request. Only the fields
// relevant to Type are populated.
type SourceDetails struct {
	Type string `json:"type"`

	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
	Cost    int    `json:"cost,omitempty"`

	// twitch-channel-reward
	RewardID     string `json:"rewardID,omitempty"`
	RedemptionID string `json:"redemptionID,omitempty"`
	TwitchID     string `json:"twitchID,omitempty"`

	// pulsoid-trigger
	Cooldown        float64 `json:"cooldown,omitempty"`
	HeartRate       float64 `json:"heartRate,omitempty"`
	UUID            string  `json:"uuid,omitempty"`
	TriggerType     string  `json:"triggerType,omitempty"`
	TargetHeartRate float64 `json:"targetHeartRate,omitempty"`
	HoldTime        float64 `json:"holdTime,omitempty"`

	// tiktok-gift
	UserID        string `json:"userID,omitempty"`
	GiftName      string `json:"giftName,omitempty"`
	GiftID        int    `json:"giftID,omitempty"`
	TransactionID string `json:"transactionID,omitempty"`
}

// GameRecord identifies a game or game pack
type GameRecord struct {
	GamePackID   string `json:"gamePackID"`
	Platform     string `json:"platform"`
	Name         string `json:"name"`
	ProExclusive bool   `json:"proExclusive,omitempty"`
	Image        string `json:"image,omitempty"`
}

// EffectParameter is a user-chosen parameter value
type EffectParameter struct {
	Value string `json:"value"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Name  string `json:"name,omitempty"`
}
