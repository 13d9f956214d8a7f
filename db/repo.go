package db

import (
	"errors"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateTag = errors.New("asset_tag already exists")
	ErrNotAvailable = errors.New("asset is not available")
	ErrBlankName    = errors.New("name is blank")
	ErrNameTaken    = errors.New("name already exists")
	ErrInUse        = errors.New("record is referenced by assets")
)
