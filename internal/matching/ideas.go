package matching

import (
	"slices"

	"github.com/garnizeh/campus/pkg/models"
)

func firstN(tags []string, n int) []string {
	if len(tags) > n {
		tags = tags[:n]
	}
	return slices.Clone(tags)
}

// FallbackIdeas returns the three templated project ideas served when no
// model answer is available. The leading tags are folded into each idea's
// technologies.
func FallbackIdeas(tags []string, difficulty models.Difficulty) []models.ProjectIdea {
	return []models.ProjectIdea{
		{
			Title:        "Smart Campus Navigator",
			Description:  "An AI-powered indoor navigation system using computer vision and IoT sensors to help students navigate the campus efficiently, find available study spaces, and locate resources.",
			Technologies: append(firstN(tags, 3), "React", "TensorFlow", "Firebase"),
			Duration:     "6-8 weeks",
			TeamSize:     "4-5 members",
			Difficulty:   difficulty,
			Architecture: "Frontend: React PWA, Backend: Go API + SQLite, AI: TensorFlow.js for computer vision, IoT: Raspberry Pi sensors",
		},
		{
			Title:        "EcoTracker Campus",
			Description:  "A sustainability dashboard that tracks campus carbon footprint using IoT sensors and machine learning analytics to promote environmental awareness and green practices.",
			Technologies: append(firstN(tags, 2), "IoT", "Machine Learning", "React"),
			Duration:     "4-6 weeks",
			TeamSize:     "3-4 members",
			Difficulty:   difficulty,
			Architecture: "IoT Layer: Sensor network with MQTT, Analytics: Python ML pipeline, Frontend: React dashboard with real-time data visualization",
		},
		{
			Title:        "StudyBuddy AI",
			Description:  "AI-powered study companion that creates personalized learning paths, connects students for collaborative study sessions, and provides intelligent tutoring assistance.",
			Technologies: append(firstN(tags, 2), "LLM API", "Flutter", "SQLite"),
			Duration:     "5-7 weeks",
			TeamSize:     "3-4 members",
			Difficulty:   difficulty,
			Architecture: "Mobile: Flutter cross-platform app, AI: local LLM for personalized content, Backend: REST API with real-time collaboration features",
		},
	}
}
