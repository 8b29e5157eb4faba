package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardFor(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://job-boards.greenhouse.io/acme/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/acme/0c9e-platform-engineer", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/External/job/Go-Engineer_R123", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme/1234", PlatformAshby},
		{"https://JOBS.LEVER.CO/acme/1", PlatformLever},
		{"https://notlever.co/acme/1", PlatformUnknown},
		{"https://lever.co.example.com/jobs", PlatformUnknown},
		{"https://careers.example.com/go-engineer", PlatformUnknown},
		{"://bad url", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, BoardFor(tt.url).Platform)
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestBoardFor_UnknownUsesGenericSelectors(t *testing.T) {
	board := BoardFor("https://careers.example.com/go-engineer")
	assert.Equal(t, JobPostingSelectors(), board.Content)
	assert.Equal(t, applicationNoise, board.NoiseSelectors())
}

func TestBoard_NoiseSelectorsDoNotAlias(t *testing.T) {
	board := BoardFor("https://jobs.lever.co/acme/1")
	first := board.NoiseSelectors()
	first[0] = "mutated"
	assert.Equal(t, "form", board.NoiseSelectors()[0])
	assert.Contains(t, board.NoiseSelectors(), ".posting-apply")
}

func TestBoard_Extract(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		html    string
		want    []string
		notWant []string
	}{
		{
			name: "greenhouse drops application and self id",
			url:  "https://job-boards.greenhouse.io/acme/jobs/1",
			html: `<html><body>
				<div id="content">
				  <div class="job__description body">
				    <h2>Senior Go Engineer</h2>
				    <ul><li>Kubernetes operators</li><li>PostgreSQL tuning</li></ul>
				  </div>
				  <div class="application--wrapper"><label>First name</label></div>
				  <div class="voluntary-self-id">Gender survey</div>
				</div></body></html>`,
			want:    []string{"Senior Go Engineer", "- Kubernetes operators", "- PostgreSQL tuning"},
			notWant: []string{"First name", "Gender survey"},
		},
		{
			name: "lever drops apply section",
			url:  "https://jobs.lever.co/acme/1",
			html: `<html><body><div class="posting-page">
				<div class="posting-description"><p>Build the billing platform in Go.</p></div>
				<div class="posting-apply"><a>Apply for this job</a></div>
				</div></body></html>`,
			want:    []string{"Build the billing platform in Go."},
			notWant: []string{"Apply for this job"},
		},
		{
			name: "unknown board falls back to generic selectors",
			url:  "https://careers.example.com/go",
			html: `<html><body><nav>Home</nav>
				<div class="job-description"><p>Terraform and AWS experience.</p></div>
				<form><input name="email">Email me jobs</form>
				</body></html>`,
			want:    []string{"Terraform and AWS experience."},
			notWant: []string{"Home", "Email me jobs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := BoardFor(tt.url).Extract(tt.html)
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, text, s)
			}
		})
	}
}
