package fetch

import (
	"net/url"
	"strings"
)

// Platform names the applicant tracking system hosting a job posting.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

// Board describes how to pull the job description out of one platform's pages.
// Content selectors are tried in order; noise is removed before matching.
type Board struct {
	Platform Platform
	Domains  []string
	Content  []string
	Noise    []string
}

// applicationNoise strips the apply form, EEO survey and consent banners that
// every board renders next to the description. None of it should reach the
// prompt.
var applicationNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".eeo-statement",
	".eeo-section",
	".voluntary-disclosure",
	".self-identification",
	".social-share",
	".cookie-consent",
	".gdpr-notice",
}

var boards = []Board{
	{
		Platform: PlatformGreenhouse,
		Domains:  []string{"greenhouse.io"},
		Content:  []string{".job__description.body", ".job__description", "#content"},
		Noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section"},
	},
	{
		Platform: PlatformLever,
		Domains:  []string{"lever.co"},
		Content:  []string{".posting-page", ".posting-description", ".content"},
		Noise:    []string{".posting-apply", ".apply-section"},
	},
	{
		Platform: PlatformWorkday,
		Domains:  []string{"myworkdayjobs.com", "workday.com"},
		Content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		Noise:    []string{"[data-automation-id='applyButton']"},
	},
	{
		Platform: PlatformAshby,
		Domains:  []string{"ashbyhq.com"},
		Content:  []string{"[class*='descriptionText']", ".ashby-job-posting-description", "main"},
		Noise:    []string{"[class*='applicationForm']"},
	},
}

// BoardFor returns the extraction profile for a posting URL. Hosts are matched
// on whole domain labels, so "jobs.lever.co" matches lever.co but
// "notlever.co" does not. Unknown hosts get the generic job selectors.
func BoardFor(urlStr string) Board {
	if parsed, err := url.Parse(urlStr); err == nil {
		host := strings.ToLower(parsed.Hostname())
		for _, b := range boards {
			for _, domain := range b.Domains {
				if host == domain || strings.HasSuffix(host, "."+domain) {
					return b
				}
			}
		}
	}
	return Board{Platform: PlatformUnknown, Content: JobPostingSelectors()}
}

// DetectPlatform identifies the job board hosting a URL.
func DetectPlatform(urlStr string) Platform {
	return BoardFor(urlStr).Platform
}

// NoiseSelectors returns the board's own noise plus the shared application noise.
func (b Board) NoiseSelectors() []string {
	out := make([]string, 0, len(applicationNoise)+len(b.Noise))
	out = append(out, applicationNoise...)
	return append(out, b.Noise...)
}

// Extract returns the job description text from a page on this board.
func (b Board) Extract(html string) (string, error) {
	return ExtractMainText(html, b.Content, b.NoiseSelectors()...)
}
