package listing

// Agent is one entry of the site-data agents list.
type Agent struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	LicenseNumber   string `json:"license_number"`
	Bio             string `json:"bio"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	ProfilePhotoURL string `json:"profile_photo_url"`
}

// SiteData is the document edited by the admin tooling. Only the documented
// fields are read; everything else is ignored.
type SiteData struct {
	Agents      []Agent           `json:"agents"`
	Listings    []map[string]any  `json:"listings"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	SocialMedia map[string]string `json:"social_media"`
}

// Testimonial is one client quote.
type Testimonial struct {
	Name        string `json:"name"`
	Testimonial string `json:"testimonial"`
	Date        string `json:"date"`
}

// LoadSiteData reads the site-data document.
func LoadSiteData(path string) (*SiteData, error) {
	var data SiteData
	if err := decodeFile(path, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// LoadTestimonials reads a JSON list of testimonials.
func LoadTestimonials(path string) ([]Testimonial, error) {
	var out []Testimonial
	if err := decodeFile(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
