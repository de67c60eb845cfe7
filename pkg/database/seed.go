package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/group"
	"roomatch/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	AdminEmail      string
	AdminPassword   string
	CreateTestUsers bool
	TestUserCount   int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		AdminEmail:      "admin@roomatch.dev",
		AdminPassword:   "Admin@123!",
		CreateTestUsers: true,
		TestUserCount:   5,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	AdminUser     *user.User
	TestUsers     []*user.User
	Groups        []*group.Group
	Conversations []*chat.Conversation
	Messages      []*chat.Message
}

// Seed runs the complete database seeding
func Seed(cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	result := &SeedResult{}

	log.Println("Starting database seeding...")

	adminUser, err := seedAdminUser(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}
	result.AdminUser = adminUser

	if cfg.CreateTestUsers {
		testUsers, err := seedTestUsers(cfg.TestUserCount)
		if err != nil {
			return nil, fmt.Errorf("failed to seed test users: %w", err)
		}
		result.TestUsers = testUsers

		if len(testUsers) >= 3 {
			g, err := seedGroup(testUsers[:3])
			if err != nil {
				return nil, fmt.Errorf("failed to seed group: %w", err)
			}
			result.Groups = append(result.Groups, g)

			convs, msgs, err := seedConversations(testUsers, g)
			if err != nil {
				return nil, fmt.Errorf("failed to seed conversations: %w", err)
			}
			result.Conversations = convs
			result.Messages = msgs
		}
	}

	log.Println("Database seeding completed successfully!")
	return result, nil
}

// SeedMinimal runs minimal seeding (admin user only)
func SeedMinimal(cfg *SeedConfig) (*user.User, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	return seedAdminUser(cfg)
}

func seedAdminUser(cfg *SeedConfig) (*user.User, error) {
	var existing user.User
	err := DB.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		log.Printf("Admin user already exists: %s", cfg.AdminEmail)
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := user.User{
		ID:           uuid.New(),
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		FirstName:    "System",
		LastName:     "Admin",
		Status:       user.StatusEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	log.Printf("Created admin user: %s", admin.Email)
	return &admin, nil
}

func seedTestUsers(count int) ([]*user.User, error) {
	firstNames := []string{"Alice", "Bruno", "Carla", "Diego", "Emma", "Felix", "Gina", "Hugo"}
	users := make([]*user.User, 0, count)

	hash, err := bcrypt.GenerateFromPassword([]byte("Test@123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		name := firstNames[i%len(firstNames)]
		email := fmt.Sprintf("%s%d@roomatch.dev", name, i+1)

		var existing user.User
		if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
			users = append(users, &existing)
			continue
		}

		now := time.Now()
		u := user.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    name,
			LastName:     "Tester",
			Status:       user.StatusEnabled,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := DB.Create(&u).Error; err != nil {
			return nil, err
		}
		users = append(users, &u)
	}

	log.Printf("Created %d test users", len(users))
	return users, nil
}

func seedGroup(members []*user.User) (*group.Group, error) {
	creator := members[0]
	now := time.Now()

	g := group.Group{
		ID:          uuid.New(),
		Name:        "Flat hunters",
		Description: sql.NullString{String: "Three of us looking for a 3-bedroom place", Valid: true},
		Status:      group.StatusOpened,
		Budget:      sql.NullInt64{Int64: 2400, Valid: true},
		CreatedBy:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, m := range members {
		role := group.RoleMember
		if i == 0 {
			role = group.RoleCreator
		}
		g.Invitees = append(g.Invitees, group.Invitee{
			GroupID:  g.ID,
			UserID:   m.ID,
			Role:     role,
			JoinedAt: now,
		})
	}
	if err := DB.Create(&g).Error; err != nil {
		return nil, err
	}
	log.Printf("Created group %q with %d members", g.Name, len(g.Invitees))
	return &g, nil
}

func seedConversations(users []*user.User, g *group.Group) ([]*chat.Conversation, []*chat.Message, error) {
	var convs []*chat.Conversation
	var msgs []*chat.Message

	private := chat.NewPrivateConversation(users[0].ID, users[1].ID)
	if err := DB.Create(&private).Error; err != nil {
		return nil, nil, err
	}
	convs = append(convs, &private)

	groupConv := chat.NewGroupConversation(g.ID)
	if err := DB.Create(&groupConv).Error; err != nil {
		return nil, nil, err
	}
	convs = append(convs, &groupConv)

	samples := []struct {
		conv    *chat.Conversation
		author  uuid.UUID
		content string
	}{
		{&private, users[0].ID, "Hey, still looking for a roommate?"},
		{&private, users[1].ID, "Yes! Want to visit the place this weekend?"},
		{&groupConv, g.CreatedBy, "Found a promising listing near the station."},
	}
	for _, s := range samples {
		m := chat.Message{
			ID:             uuid.New(),
			ConversationID: s.conv.ID,
			AuthorID:       s.author,
			Content:        s.content,
			CreatedAt:      time.Now(),
		}
		if err := DB.Create(&m).Error; err != nil {
			return nil, nil, err
		}
		msgs = append(msgs, &m)
	}

	log.Printf("Created %d conversations and %d messages", len(convs), len(msgs))
	return convs, msgs, nil
}
