package agent

import "fmt"

// Token budgets per stage. These bound cost per run; the word/paragraph
// budgets inside the prompts are requests to the model, not enforced limits.
const (
	titleMaxTokens       = 50
	researchMaxTokens    = 300
	imagePromptMaxTokens = 50
	postMaxTokens        = 600
)

func titlePrompt(category string) string {
	return fmt.Sprintf(`Generate a catchy blog post title for the category '%s'.
Focus on recent trends or innovations (e.g., AI breakthroughs, Web3 scalability, AGI ethics).
Keep it concise, max 10 words.`, category)
}

func researchPrompt(topic, year string) string {
	return fmt.Sprintf(`Summarize key developments in %s for %s in 8 short bullet points:
- Recent innovations (1 sentence).
- Current trends (1 sentence).
- Key statistics (1 sentence).
- Future predictions (1 sentence).
- Practical applications (1 sentence).
- Notable challenge (1 sentence).
- Industry impact (1 sentence).
- Emerging opportunity (1 sentence).
Keep it concise, max 30 words per bullet.`, topic, year)
}

func imagePromptPrompt(topic, title, research string) string {
	return fmt.Sprintf(`Create a prompt for an image based on the blog post titled '%s' in the category '%s'.
Use this research: %s
The image should be visually striking, modern, and relevant (e.g., futuristic AI for AI category, blockchain nodes for Web3).
Keep the prompt concise, max 20 words.`, title, topic, research)
}

func postPrompt(topic, research, authorName, authorPicture, coverImage, publishedAt string) string {
	return fmt.Sprintf(`Write a short blog post about %s in Markdown, using this research:
%s
Start with this frontmatter (single quotes):

---
title: '(Catchy title)'
status: 'published'
author:
  name: '%s'
  picture: '%s'
slug: '(URL-friendly title)'
description: '(One-sentence summary)'
coverImage: '%s'
category: '%s'
publishedAt: '%s'
---

Content: 2-3 paragraphs, max 200 words total, no code blocks.`,
		topic, research, authorName, authorPicture, coverImage, topic, publishedAt)
}
