package domain

type (
	Clip struct {
		ID              string  `json:"id"`
		URL             string  `json:"url"`
		EmbedURL        string  `json:"embed_url"`
		BroadcasterID   string  `json:"broadcaster_id"`
		BroadcasterName string  `json:"broadcaster_name"`
		CreatorID       string  `json:"creator_id"`
		CreatorName     string  `json:"creator_name"`
		VideoID         string  `json:"video_id"`
		GameID          string  `json:"game_id"`
		Language        string  `json:"language"`
		Title           string  `json:"title"`
		ViewCount       int     `json:"view_count"`
		CreatedAt       string  `json:"created_at"`
		ThumbnailURL    string  `json:"thumbnail_url"`
		Duration        float64 `json:"duration"`
	}

	// GIFOptions controls the ffmpeg filter chain. DurationSeconds <= 0 keeps the whole clip.
	GIFOptions struct {
		FPS             int
		Width           int
		Loop            int
		DurationSeconds float64
	}

	File struct {
		Name        string
		ContentType string
		Data        []byte
	}
)
