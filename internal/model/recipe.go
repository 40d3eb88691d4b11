package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MarkdownData holds instructions in both source and rendered form.
type MarkdownData struct {
	Markdown string `gorm:"type:text;not null" json:"markdown"`
	HTML     string `gorm:"type:text;not null" json:"html"`
}

// Validate requires both renditions to be present.
func (m MarkdownData) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Markdown, validation.Required),
		validation.Field(&m.HTML, validation.Required),
	)
}

// ImageData references a stored image by its path under the images root.
// An empty URL means the recipe has no image.
type ImageData struct {
	URL     string  `gorm:"size:512" json:"url"`
	AltText *string `gorm:"size:512" json:"altText,omitempty"`
}

// IsZero reports whether no image is set.
func (i ImageData) IsZero() bool {
	return i.URL == ""
}

type Recipe struct {
	ID           int64                       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID      uuid.UUID                   `gorm:"type:varchar(36);not null;index" json:"ownerId"`
	CuisineID    int                         `gorm:"not null;index" json:"cuisineId"`
	Cuisine      *Cuisine                    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"cuisine,omitempty"`
	Name         string                      `gorm:"size:255;not null" json:"name"`
	Description  *string                     `gorm:"type:text" json:"description,omitempty"`
	CoverImage   ImageData                   `gorm:"embedded;embeddedPrefix:cover_image_" json:"coverImage"`
	Ingredients  datatypes.JSONSlice[string] `gorm:"not null" json:"ingredients"`
	Instructions MarkdownData                `gorm:"embedded;embeddedPrefix:instructions_" json:"instructions"`
	Embedding    *pgvector.Vector            `gorm:"type:vector" json:"-"`
	Created      time.Time                   `gorm:"not null" json:"created"`
	Modified     *time.Time                  `json:"modified,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Validate checks the invariants every persisted recipe must satisfy.
func (r *Recipe) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.OwnerID, validation.By(requiredUUID)),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.CuisineID, validation.Required),
		validation.Field(&r.Ingredients, validation.By(requiredIngredients)),
		validation.Field(&r.Instructions),
	)
}

// BeforeSave refuses to persist a recipe that fails Validate.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	return r.Validate()
}

func requiredUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
}

func requiredIngredients(value interface{}) error {
	list, _ := value.(datatypes.JSONSlice[string])
	return validation.Validate([]string(list), validation.Required, validation.Each(validation.Required))
}
