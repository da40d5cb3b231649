package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pro-power/polishr-sub001/internal/analytics"
	"github.com/pro-power/polishr-sub001/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	categories = []string{"web", "mobile", "cli", "library", "data", "devops", "game"}

	techPool = []string{
		"Go", "TypeScript", "React", "Vue", "Svelte", "PostgreSQL", "Redis",
		"Docker", "Kubernetes", "Terraform", "Python", "Rust", "GraphQL",
		"Next.js", "Tailwind", "gRPC", "Kafka", "SQLite", "AWS", "Fly.io",
	}

	statuses = []string{
		models.ProjectStatusLive,
		models.ProjectStatusLive,
		models.ProjectStatusComingSoon,
		models.ProjectStatusDraft,
	}

	clickTypes = []string{
		models.ClickTypeDemo,
		models.ClickTypeRepo,
		models.ClickTypeCTA,
		models.ClickTypeImage,
		models.ClickTypeTitle,
	}

	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/124.0 Mobile Safari/537.36",
		"Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	}
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a demo user with a completed
// profile. Optional override functions may modify the generated user
// before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	verifiedAt := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
	github := fmt.Sprintf("https://github.com/%s", gofakeit.Username())
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)

	user := &models.User{
		Username:            fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:               gofakeit.Email(),
		Password:            string(hashedPassword),
		DisplayName:         gofakeit.Name(),
		Bio:                 gofakeit.Sentence(12),
		AvatarURL:           &avatar,
		GithubURL:           &github,
		Theme:               "dark",
		Plan:                models.PlanFree,
		EmailVerifiedAt:     &verifiedAt,
		OnboardingCompleted: true,
	}
	if f.r.Intn(5) == 0 {
		user.Plan = models.PlanPro
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProject persists a demo project at the given position, with one
// to three attached images.
func (f *Factory) CreateProject(user *models.User, position int) (*models.Project, error) {
	stack := make([]string, 0, 4)
	for _, idx := range f.r.Perm(len(techPool))[:2+f.r.Intn(3)] {
		stack = append(stack, techPool[idx])
	}

	demoURL := gofakeit.URL()
	ctaText := "Try the demo"

	project := &models.Project{
		UserID:      user.ID,
		Title:       gofakeit.AppName(),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		TechStack:   stack,
		Category:    categories[f.r.Intn(len(categories))],
		CTAType:     models.ClickTypeDemo,
		CTAURL:      &demoURL,
		CTAText:     &ctaText,
		Status:      statuses[f.r.Intn(len(statuses))],
		Public:      f.r.Intn(10) != 0,
		Position:    position,
		CreatedAt:   gofakeit.DateRange(time.Now().AddDate(0, -4, 0), time.Now()),
	}
	if err := f.db.Create(project).Error; err != nil {
		return nil, err
	}

	numImages := 1 + f.r.Intn(3)
	for i := 0; i < numImages; i++ {
		image := &models.ProjectImage{
			ProjectID: project.ID,
			Position:  i,
			URL:       fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID()),
		}
		if err := f.db.Create(image).Error; err != nil {
			return nil, err
		}
		if i == 0 {
			if err := f.db.Model(project).UpdateColumn("image_url", image.URL).Error; err != nil {
				return nil, err
			}
		}
	}

	return project, nil
}

// CreateProfileViews persists n view events spread over the last month,
// each from a distinct synthetic visitor.
func (f *Factory) CreateProfileViews(user *models.User, n int) error {
	for i := 0; i < n; i++ {
		ip := gofakeit.IPv4Address()
		ua := userAgents[f.r.Intn(len(userAgents))]
		view := &models.ProfileView{
			UserID:      user.ID,
			VisitorID:   analytics.Fingerprint(ip, ua),
			IPAddress:   ip,
			UserAgent:   ua,
			Referer:     gofakeit.URL(),
			DeviceType:  analytics.DeviceType(ua),
			BrowserType: analytics.BrowserType(ua),
			CreatedAt:   gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
		}
		if err := f.db.Create(view).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateProjectClicks persists n click events and syncs the project's
// cached counter to match.
func (f *Factory) CreateProjectClicks(project *models.Project, n int) error {
	for i := 0; i < n; i++ {
		ip := gofakeit.IPv4Address()
		ua := userAgents[f.r.Intn(len(userAgents))]
		click := &models.ProjectClick{
			ProjectID:   project.ID,
			VisitorID:   analytics.Fingerprint(ip, ua),
			ClickType:   clickTypes[f.r.Intn(len(clickTypes))],
			IPAddress:   ip,
			UserAgent:   ua,
			DeviceType:  analytics.DeviceType(ua),
			BrowserType: analytics.BrowserType(ua),
			CreatedAt:   gofakeit.DateRange(project.CreatedAt, time.Now()),
		}
		if err := f.db.Create(click).Error; err != nil {
			return err
		}
	}
	return f.db.Model(project).UpdateColumn("click_count", n).Error
}
