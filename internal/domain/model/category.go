package model

// Category is a job category offered to admins when posting.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var categories = []Category{
	// Development & IT
	{"development", "Web Development"},
	{"mobile", "Mobile App Development"},
	{"backend", "Backend Development"},
	{"frontend", "Frontend Development"},
	{"fullstack", "Full-Stack Development"},
	{"devops", "DevOps & Cloud"},
	{"database", "Database Administration"},
	{"qa", "QA & Testing"},
	{"cybersecurity", "Cybersecurity"},
	{"ai-ml", "AI / Machine Learning"},
	{"data-science", "Data Science & Analytics"},
	{"blockchain", "Blockchain"},
	{"game-dev", "Game Development"},
	{"embedded", "Embedded / IoT"},

	// Design & Creative
	{"design", "Design (UI/UX, Graphic)"},
	{"video", "Video Production & Animation"},
	{"audio", "Audio Production & Voiceover"},
	{"illustration", "Illustration"},

	// Writing & Translation
	{"writing", "Writing & Editing"},
	{"translation", "Translation & Localization"},
	{"content", "Content Strategy & Copywriting"},

	// Sales, Marketing & Support
	{"marketing", "Digital Marketing"},
	{"seo", "SEO & ASO"},
	{"social", "Social Media Management"},
	{"sales", "Sales & Business Development"},
	{"support", "Customer Support"},

	// Management & Operations
	{"pm", "Project / Product Management"},
	{"hr", "HR & Recruiting"},
	{"admin", "Admin & Virtual Assistance"},

	// Finance & Legal
	{"finance", "Finance & Accounting"},
	{"legal", "Legal"},

	// Other
	{"education", "Education & Tutoring"},
	{"healthcare-it", "Healthcare IT"},
	{"research", "Research & Surveys"},
}

var categoryIndex = func() map[string]struct{} {
	m := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		m[c.Value] = struct{}{}
	}
	return m
}()

// Categories returns a copy of the category list in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether value names a known category.
func IsCategory(value string) bool {
	_, ok := categoryIndex[value]
	return ok
}
