// Package portfolio serves the static parts of the site: profile, skills,
// experience and project cards.
package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Skill struct {
	Label string `json:"label"`
	Level int    `json:"level"`
}

type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Stars       int      `json:"stars"`
	Demo        string   `json:"demo,omitempty"`
	Code        string   `json:"code,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

type Profile struct {
	Name       string       `json:"name"`
	Headline   string       `json:"headline"`
	About      string       `json:"about"`
	Highlights []string     `json:"highlights"`
	Stack      []string     `json:"stack"`
	Email      string       `json:"email"`
	GitHub     string       `json:"github"`
	Experience []Experience `json:"experience"`
	Skills     []Skill      `json:"skills"`
	Projects   []Project    `json:"projects"`
}

// Load reads a profile from a JSON file. An empty path or a missing file
// yields Default. Sections absent from the file keep their defaults.
func Load(path string) (Profile, error) {
	profile := Default()
	if path == "" {
		return profile, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return profile, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", path, err)
	}
	if err := profile.validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return profile, nil
}

func (p Profile) validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	for _, s := range p.Skills {
		if s.Level < 0 || s.Level > 100 {
			return fmt.Errorf("skill %q: level %d out of range", s.Label, s.Level)
		}
	}
	for _, pr := range p.Projects {
		if pr.Title == "" {
			return errors.New("project without title")
		}
	}
	return nil
}

func Default() Profile {
	return Profile{
		Name:     "Uğur",
		Headline: "Web arayüzleri ve etkileşimli deneyimler tasarlayan bir geliştiriciyim. Modern, performanslı ve kullanıcı odaklı ürünler geliştiriyorum.",
		About: "Frontend odaklı bir geliştiriciyim. Tasarım sistemleri kurar, performans ve erişilebilirliği önceleyerek " +
			"modern arayüzler geliştiririm. Temiz kod, yeniden kullanılabilir bileşenler ve yalın mimari benim için " +
			"temel prensiplerdir.",
		Highlights: []string{
			"Tasarım sistemi oluşturma ve komponent mimarisi",
			"Performans optimizasyonu (bundle, lazy, memoization)",
			"Erişilebilirlik ve test odaklı geliştirme",
		},
		Stack:  []string{"React", "TypeScript", "Tailwind CSS", "Vite"},
		Email:  "uguro9319@gmail.com",
		GitHub: "https://github.com/UgurOz1",
		Experience: []Experience{
			{
				Title:       "Frontend Intern, Rise Technology, Consulting & Academy",
				Period:      "2025 – Güncel",
				Description: "React + TypeScript ile ürün/iç araç projeleri geliştirme, bileşen kütüphaneleri ve UI entegrasyonları.",
			},
			{
				Title:       "Giresun Üniversitesi, Bilgisayar Mühendisliği (3. Sınıf)",
				Description: "Algoritmalar, veri yapıları ve yazılım mühendisliği temelleri.",
			},
		},
		Skills: []Skill{
			{Label: "React", Level: 70},
			{Label: "TypeScript", Level: 70},
			{Label: "Tailwind CSS", Level: 70},
			{Label: "Java", Level: 50},
			{Label: "Python", Level: 70},
			{Label: "Git", Level: 80},
		},
		Projects: []Project{
			{Title: "restoran-App", Description: "Açıklama eklenmemiş.", Tags: []string{"TypeScript"}, Code: "https://github.com/UgurOz1/restoran-App"},
			{Title: "To-Do-List", Description: "Açıklama eklenmemiş.", Tags: []string{"TypeScript"}, Code: "https://github.com/UgurOz1/To-Do-List"},
			{Title: "TechBlog", Description: "Açıklama eklenmemiş.", Tags: []string{"Python"}, Code: "https://github.com/UgurOz1/TechBlog"},
			{
				Title:       "mucize_komur_evi",
				Description: "Açıklama eklenmemiş.",
				Tags:        []string{"CSS"},
				Demo:        "https://uguroz1.github.io/mucize_komur_evi/",
				Code:        "https://github.com/UgurOz1/mucize_komur_evi",
			},
			{Title: "TicTacToe", Description: "A simple TicTacToe game developed with Java", Tags: []string{"Java"}, Code: "https://github.com/UgurOz1/TicTacToe"},
			{Title: "StudentDatabaseApplication", Description: "It is a simple project that was developed with Java", Tags: []string{"Java"}, Code: "https://github.com/UgurOz1/StudentDatabaseApplication"},
		},
	}
}
