package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const describeFallback = "Project description currently unavailable."

// DescribeProject asks the model for a short portfolio blurb. Failures are
// absorbed into a fixed fallback string so the caller always has something to
// render.
func DescribeProject(ctx context.Context, llm Streamer, log *zap.SugaredLogger, title string, techStack []string) string {
	prompt := fmt.Sprintf(
		"Write a concise, engaging, professional portfolio description (max 30 words) for a software project named %q built with %s. "+
			"Focus on the value proposition and technical achievement. Do not use quotes.",
		title, strings.Join(techStack, ", "))

	out, err := llm.Generate(ctx, prompt)
	if err != nil {
		log.Errorw("project description generation failed", "title", title, "error", err)
		return describeFallback
	}
	if out == "" {
		return "Description unavailable."
	}
	return out
}
