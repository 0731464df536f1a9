package domain

import (
	"fmt"
	"strings"
)

// Category is the domain a question is classified into. The set is closed.
type Category string

const (
	CategoryMedical     Category = "Medical"
	CategoryTechnical   Category = "Technical"
	CategoryBusiness    Category = "Business"
	CategoryEducation   Category = "Education"
	CategoryEnvironment Category = "Environment"
	CategoryGovernment  Category = "Government"
	CategorySocial      Category = "Social"
	CategoryArts        Category = "Arts"
	CategoryOther       Category = "Other"
)

// DefaultCategory is used whenever a classification cannot be resolved.
const DefaultCategory = CategoryOther

// CategoryDescriptor pairs a category with the description shown to the
// classifier model.
type CategoryDescriptor struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

type categoryEntry struct {
	description string
	template    string
	guidance    string
}

// categoryOrder fixes the order categories are presented to the classifier.
var categoryOrder = []Category{
	CategoryMedical,
	CategoryTechnical,
	CategoryBusiness,
	CategoryEducation,
	CategoryEnvironment,
	CategoryGovernment,
	CategorySocial,
	CategoryArts,
	CategoryOther,
}

var taxonomy = map[Category]categoryEntry{
	CategoryMedical: {
		description: "Health, medicine, wellness, fitness",
		template:    "You are a medical innovation specialist. Generate a creative, ethical, and scientifically grounded idea to solve the following health-related challenge. Include specific implementation steps, potential challenges, and how this idea advances healthcare. Aim for practical yet forward-thinking solutions that could realistically be developed within 3-5 years:",
		guidance:    "Consider consulting with healthcare professionals and reviewing medical literature to validate and refine this concept. What specific patient population would benefit most from this innovation?",
	},
	CategoryTechnical: {
		description: "Software, hardware, engineering, AI, data science",
		template:    "You are a technology innovation specialist. Generate a creative, feasible, and cutting-edge technical solution to the following challenge. Include specific implementation approaches, technical requirements, and how this innovation builds upon or disrupts existing technologies. Focus on solutions that balance innovation with practicality:",
		guidance:    "Consider exploring open-source communities or technology incubators that might help develop this concept further. What existing technologies could you leverage to accelerate development?",
	},
	CategoryBusiness: {
		description: "Entrepreneurship, marketing, finance, management",
		template:    "You are a business innovation strategist. Generate a creative, market-viable business idea or strategy to address the following challenge. Include potential business models, target audience analysis, competitive advantages, and implementation roadmap. Balance profitability with sustainability and social responsibility:",
		guidance:    "Consider conducting market research and developing a minimum viable product to test your concept. What unique value proposition would differentiate your solution in the market?",
	},
	CategoryEducation: {
		description: "Learning, teaching, academic research, student life",
		template:    "You are an education innovation specialist. Generate a creative, evidence-based approach to address the following educational challenge. Include implementation methodology, assessment strategies, and how this idea enhances learning outcomes. Focus on solutions that are inclusive, engaging, and adaptable to diverse learning environments:",
		guidance:    "Consider piloting this approach in a small educational setting to gather feedback and refine the implementation. What specific learning outcomes would you prioritize measuring?",
	},
	CategoryEnvironment: {
		description: "Sustainability, climate, conservation, green technology",
		template:    "You are an environmental innovation expert. Generate a creative, sustainable solution to the following environmental challenge. Include practical implementation steps, potential impact metrics, and how this idea advances sustainability goals. Balance ecological benefits with economic and social feasibility:",
		guidance:    "Consider partnering with environmental organizations or sustainable businesses to pilot this concept. How might you quantify the environmental impact of your solution?",
	},
	CategoryGovernment: {
		description: "Policy, law, regulation, public administration",
		template:    "You are a public policy innovation specialist. Generate a creative, ethical policy approach or civic technology solution to address the following governance challenge. Include implementation considerations, stakeholder analysis, and metrics for measuring success. Focus on solutions that enhance transparency, efficiency, or citizen engagement:",
		guidance:    "Consider engaging with local government innovation labs or civic tech organizations to develop this concept further. How would you measure improved civic outcomes?",
	},
	CategorySocial: {
		description: "Community, relationships, communication, social media",
		template:    "You are a social innovation strategist. Generate a creative approach to address the following social challenge. Include community engagement strategies, impact assessment methods, and scalability considerations. Balance addressing immediate needs with systemic change:",
		guidance:    "Consider community-based participatory research approaches to refine and implement this concept. How would you ensure the solution addresses the needs of all stakeholders?",
	},
	CategoryArts: {
		description: "Creativity, design, music, visual arts, literature",
		template:    "You are a creative innovation specialist. Generate a novel artistic or design-based approach to address the following challenge. Include conceptual foundations, technical requirements, and potential cultural impact. Focus on ideas that push creative boundaries while remaining accessible and meaningful:",
		guidance:    "Consider collaborating with artists, designers, and potential audiences to develop and refine this concept. How might you secure funding or resources for implementation?",
	},
	CategoryOther: {
		description: "For queries that don't fit the above categories",
		template:    "You are an innovation generalist with expertise across multiple domains. Generate a creative, practical solution to the following challenge. Include specific implementation steps, potential obstacles, and success metrics. Balance innovation with feasibility, focusing on ideas that could be realistically developed and deployed:",
		guidance:    "Consider forming an interdisciplinary team to help develop this concept further. What metrics would best capture the success of your innovation?",
	},
}

// Categories returns every category in classifier order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Describe returns the classifier description of every category, in order.
func Describe() []CategoryDescriptor {
	out := make([]CategoryDescriptor, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, CategoryDescriptor{Category: c, Description: taxonomy[c].description})
	}
	return out
}

// IsValid reports whether s is exactly one of the category labels.
func IsValid(s string) bool {
	_, ok := taxonomy[Category(s)]
	return ok
}

// ParseCategory resolves raw classifier output to a category. Surrounding
// whitespace is ignored; anything else must match a label exactly, otherwise
// DefaultCategory is returned.
func ParseCategory(raw string) Category {
	s := strings.TrimSpace(raw)
	if IsValid(s) {
		return Category(s)
	}
	return DefaultCategory
}

// TemplateFor returns the innovation persona prompt for c.
// Passing a value outside the closed set is a programming error and panics.
func TemplateFor(c Category) string {
	return mustEntry(c).template
}

// GuidanceFor returns the closing guidance suggestion for c.
func GuidanceFor(c Category) string {
	return mustEntry(c).guidance
}

func mustEntry(c Category) categoryEntry {
	e, ok := taxonomy[c]
	if !ok {
		panic(fmt.Sprintf("domain: unknown category %q", string(c)))
	}
	return e
}

// ValidateTaxonomy checks that every category is fully and distinctly mapped.
// It is run once at startup.
func ValidateTaxonomy() error {
	if len(categoryOrder) != len(taxonomy) {
		return fmt.Errorf("domain: taxonomy has %d entries for %d categories", len(taxonomy), len(categoryOrder))
	}
	if _, ok := taxonomy[DefaultCategory]; !ok {
		return fmt.Errorf("domain: default category %q is not mapped", DefaultCategory)
	}
	templates := make(map[string]Category, len(taxonomy))
	guidance := make(map[string]Category, len(taxonomy))
	for _, c := range categoryOrder {
		e, ok := taxonomy[c]
		if !ok {
			return fmt.Errorf("domain: category %q is not mapped", c)
		}
		if strings.TrimSpace(e.description) == "" || strings.TrimSpace(e.template) == "" || strings.TrimSpace(e.guidance) == "" {
			return fmt.Errorf("domain: category %q has an empty entry", c)
		}
		if prev, dup := templates[e.template]; dup {
			return fmt.Errorf("domain: categories %q and %q share a template", prev, c)
		}
		if prev, dup := guidance[e.guidance]; dup {
			return fmt.Errorf("domain: categories %q and %q share a guidance suffix", prev, c)
		}
		templates[e.template] = c
		guidance[e.guidance] = c
	}
	return nil
}
