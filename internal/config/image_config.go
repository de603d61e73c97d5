package config

const defaultImageAPIURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-image:generateContent"

type Image struct{}

var _ ImageConfig = Image{}

func (Image) GetImageAPIKey() string {
	return GetEnv("NANO_BANANA_API_TOKEN", "")
}

func (Image) GetImageAPIURL() string {
	return GetEnv("IMAGE_API_URL", defaultImageAPIURL)
}
