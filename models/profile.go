package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the account + roommate profile for one user. The identifier is
// the school email used for OTP signup; HasAccount flips to true once the
// profile questionnaire is completed and the profile becomes matchable.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	Identifier  string `gorm:"size:200;not null;uniqueIndex" json:"identifier"`
	Name        string `gorm:"size:200" json:"name"`
	IsStaff     bool   `gorm:"default:false" json:"-"`
	IsActive    bool   `gorm:"default:true" json:"-"`
	OtpVerified bool   `gorm:"default:false" json:"-"`
	HasAccount  bool   `gorm:"default:false" json:"has_account"`

	Age            *uint  `json:"age"`
	GraduationYear *uint  `json:"graduation_year"`
	Description    string `gorm:"size:500" json:"description"`

	// Single-letter category codes (see choices.go)
	Sex    string `gorm:"size:1" json:"sex"`
	ShowMe string `gorm:"size:1" json:"show_me"`

	// Matching attributes: dorm/major/state plus up to 5 interest codes.
	DormBuilding string   `gorm:"size:2" json:"dorm_building"`
	Major        string   `gorm:"size:100" json:"major"`
	State        string   `gorm:"size:2" json:"state"`
	Interests    []string `gorm:"serializer:json" json:"interests"`

	// Relative media path of the chat thumbnail, set over the socket.
	Thumbnail string `gorm:"size:512" json:"thumbnail"`

	Photos []Photo `gorm:"foreignKey:ProfileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photos,omitempty"`

	// Self-referential, non-symmetrical: A blocking B does not block A.
	BlockedProfiles []*Profile `gorm:"many2many:profile_blocks;joinForeignKey:ProfileID;joinReferences:BlockedID" json:"-"`
}

// BeforeCreate assigns a UUID primary key when one wasn't set by the caller.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
