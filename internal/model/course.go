package model

import "time"

type Thumbnail struct {
	Key string `json:"public_id,omitempty"`
	URL string `json:"url,omitempty"`
}

type ListItem struct {
	Title string `json:"title"`
}

type QuestionReply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type Question struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	UserName  string          `json:"user_name"`
	Question  string          `json:"question"`
	Replies   []QuestionReply `json:"question_replies"`
	CreatedAt time.Time       `json:"created_at"`
}

type ReviewReply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a per-course rating left by an enrolled user. Reviews stay
// visible on public reads; only the course average feeds Ratings.
type Review struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name"`
	Rating    float64       `json:"rating"`
	Comment   string        `json:"comment"`
	Replies   []ReviewReply `json:"comment_replies"`
	CreatedAt time.Time     `json:"created_at"`
}

// CourseSection is one lesson. Video URLs and questions are stripped from
// public reads; only enrolled users get them through the content endpoint.
type CourseSection struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	VideoURL    string     `json:"video_url,omitempty"`
	VideoLength int        `json:"video_length,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

type Course struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          float64         `json:"price"`
	EstimatedPrice float64         `json:"estimated_price,omitempty"`
	Thumbnail      Thumbnail       `json:"thumbnail"`
	Tags           string          `json:"tags,omitempty"`
	Level          string          `json:"level,omitempty"`
	DemoURL        string          `json:"demo_url,omitempty"`
	Benefits       []ListItem      `json:"benefits,omitempty"`
	Prerequisites  []ListItem      `json:"prerequisites,omitempty"`
	Sections       []CourseSection `json:"course_data,omitempty"`
	Reviews        []Review        `json:"reviews,omitempty"`
	Ratings        float64         `json:"ratings"`
	Purchased      int             `json:"purchased"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Sanitized returns a copy safe for unauthenticated reads.
func (c Course) Sanitized() Course {
	out := c
	out.Sections = make([]CourseSection, len(c.Sections))
	for i, section := range c.Sections {
		section.VideoURL = ""
		section.Questions = nil
		out.Sections[i] = section
	}
	return out
}
