package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *OpsLog) error
	// ListByContract returns up to limit rows newest first, starting
	// strictly after the cursor ID when one is given.
	ListByContract(ctx context.Context, db *gorm.DB, orgID, contractID, cursorID snowflake.ID, limit int) ([]OpsLog, error)
}
