package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal/note"
	"github.com/rahmatfauzi/modular-backend/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notes", "user_permissions", "user_groups", "group_permissions", "revoked_tokens", "users", "groups", "permissions"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		permissions := make(map[string]*user.Permission)
		for _, p := range []user.Permission{
			{Codename: "manage_users", Name: "Can manage user accounts"},
			{Codename: "view_notes", Name: "Can view any note"},
			{Codename: "manage_notes", Name: "Can edit or delete any note"},
		} {
			perm := p
			if err := db.Where(user.Permission{Codename: perm.Codename}).FirstOrCreate(&perm).Error; err != nil {
				log.Fatalf("failed to seed permission %s: %v", perm.Codename, err)
			}
			permissions[perm.Codename] = &perm
		}

		moderators := user.Group{Name: "moderators"}
		if err := db.Where(user.Group{Name: moderators.Name}).FirstOrCreate(&moderators).Error; err != nil {
			log.Fatalf("failed to seed group: %v", err)
		}
		if err := db.Model(&moderators).Association("Permissions").Replace(permissions["view_notes"], permissions["manage_notes"]); err != nil {
			log.Fatalf("failed to attach group permissions: %v", err)
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		admin := user.User{
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			IsActive:     true,
			IsAdmin:      true,
		}
		if err := db.Where(user.User{Username: admin.Username}).FirstOrCreate(&admin).Error; err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}

		regular := user.User{
			Username:     "jdoe",
			Email:        "jdoe@example.com",
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := db.Where(user.User{Username: regular.Username}).FirstOrCreate(&regular).Error; err != nil {
			log.Fatalf("failed to seed regular user: %v", err)
		}
		if err := db.Model(&regular).Association("Groups").Replace(&moderators); err != nil {
			log.Fatalf("failed to attach user group: %v", err)
		}

		for _, text := range []string{"First note", "Second note", "Third note"} {
			n := note.Note{Note: text, UserID: regular.ID}
			if err := db.Where(note.Note{Note: text, UserID: regular.ID}).FirstOrCreate(&n).Error; err != nil {
				log.Fatalf("failed to seed note: %v", err)
			}
		}

		fmt.Println("Seeding complete: users admin/jdoe (password: password), moderators group, sample notes")
	},
}
