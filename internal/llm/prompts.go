package llm

import (
	"fmt"
	"strings"

	"newsdesk/internal/core"
)

// trustedBangladeshiSources is the allow-list applied to the first
// discovery pass for the Bangladesh region.
var trustedBangladeshiSources = []string{
	"www.thedailystar.net", "www.dhakatribune.com", "www.theindependentbd.com",
	"www.tbsnews.net", "www.newagebd.net", "www.thefinancialexpress.com.bd", "www.daily-sun.com",
}

// summaryPromptTemplate asks for the social-media summary of a known
// article. Placeholders: news URL, headline.
const summaryPromptTemplate = `Act as a world-class digital news editor with a strong talent for viral social media engagement.
Based on the article at %s and the headline "%s", create a compelling summary for a social media post.

Follow these rules for the summary:
1.  **Format**: The summary must be well-structured. Start with a strong opening sentence that grabs attention. Follow with 2-3 short, clear sentences that explain the core of the news.
2.  **Length**: The summary body should be concise, around 50-70 words.
3.  **Conclusion**: After the summary, add a line break. Then, provide 3-5 relevant, trending hashtags. Finally, on a new line, add the source name (e.g., "Source: Prothom Alo").
4.  **Tone**: Professional, engaging, and authoritative.`

func summaryPrompt(newsURL, headline string) string {
	return fmt.Sprintf(summaryPromptTemplate, newsURL, headline)
}

// discoveryPrompt builds the topic discovery prompt. The trusted-site
// restriction applies only to the Bangladesh region, and only on the
// first pass.
func discoveryPrompt(params core.DiscoverParams, useTrustedSources bool) string {
	var b strings.Builder

	b.WriteString("You are a news discovery agent. Your task is to find up to 5 recent and relevant news topics using Google Search. For each topic, you must generate a compelling headline, a brief summary, and a concise image search query.")
	fmt.Fprintf(&b, " Find topics from news published within the last %s day(s).", params.TimeFilterDays())

	if params.Region == core.RegionBangladesh {
		if useTrustedSources {
			sites := make([]string, len(trustedBangladeshiSources))
			for i, s := range trustedBangladeshiSources {
				sites[i] = "site:" + s
			}
			fmt.Fprintf(&b, `
Search for recent, top English-language news topics from Bangladesh.
**CRITICAL REQUIREMENT:** Your search MUST be restricted to the following trusted news sites. To achieve this, formulate your internal Google Search queries to include this condition: `+"`(%s)`"+`.
Do not return results from any other websites.
`, strings.Join(sites, " OR "))
		} else {
			b.WriteString(`
Search for English-language news topics from reputable news sources in Bangladesh. Your search should be broader than just a few specific sites.
`)
		}
	} else {
		b.WriteString(" Focus on major international news topics from reputable English-language sources.")
	}

	if params.Query != "" {
		fmt.Fprintf(&b, " The topics should be related to: %q.", params.Query)
	}

	if len(params.ExistingTitles) > 0 {
		fmt.Fprintf(&b, "\nExclude any topics with titles similar to these: %s.", strings.Join(params.ExistingTitles, ", "))
	}

	b.WriteString(`
**RESPONSE FORMATTING:**
1.  You MUST return a valid JSON object and nothing else.
2.  The JSON must be an object with a single key "articles". The value must be an array of objects.
3.  Each object in the array must have "title" (string, 5-10 words), "summary" (string, 50-70 words), and "imageQuery" (string, 2-4 keywords for an image search) keys.
4.  Do NOT invent or include any URLs.
5.  **On Failure:** If you find no topics matching the criteria, you MUST return ` + "`{\"articles\": []}`" + `. Do not return an error message or any other text.

Example:
{
  "articles": [
    {
      "title": "Massive Fire Engulfs Dhaka Market Causing Millions in Damage",
      "summary": "A devastating fire broke out at a popular market in Dhaka, destroying hundreds of shops. Firefighters are battling the blaze, and the cause is under investigation. No casualties have been reported yet, but the financial losses are immense.",
      "imageQuery": "Dhaka market fire"
    }
  ]
}`)

	return b.String()
}

// processURLPromptTemplate extracts headline, image options, and summary
// from a single article URL. Placeholder: news URL.
const processURLPromptTemplate = `
You are a specialized news processing agent. Your mission is to analyze the content of the provided news article URL and extract specific information in a strict JSON format.

**CRITICAL INSTRUCTIONS:**
1.  **URL Focus:** Your entire analysis MUST be based ONLY on the content found at this specific URL: %s
2.  **Tool Usage:** Use Google Search to access the content of the URL. Do not use any other sources or prior knowledge.
3.  **JSON Output ONLY:** You MUST return your findings as a single, valid JSON object. Do not include any text, notes, or markdown formatting before or after the JSON object.

**SUCCESS JSON STRUCTURE:**
If successful, you must return a JSON object with the following structure:
{
  "headline": "string",
  "imageUrls": ["string", "string", "string"],
  "summary": "string"
}

**FIELD-SPECIFIC INSTRUCTIONS:**
1.  "headline": Create a powerful, emotionally resonant headline for social media, directly based on the article's main point. It MUST be between 5 and 10 words.
2.  "imageUrls": Find 2-3 different, high-quality, relevant image URLs from the article.
    - They MUST be direct links to image files (e.g., .jpg, .png, .webp).
    - They MUST NOT be generic logos, banners, placeholders, or advertisements.
    - Prioritize the 'og:image' as the first option if it is a relevant, high-quality story image. Then, find other distinct "hero" images in the article body.
    - All image URLs must be valid and publicly accessible. If you can only find one, return it in the array. If no suitable images are found, you MUST return an array with a single valid URL for a generic news placeholder image (e.g., from unsplash.com).
3.  "summary": Write a professional, well-formatted summary of 50-70 words. Start with a strong opening sentence. Follow with 2-3 short, clear sentences explaining the core of the news. After the summary, add a single line break, then 3-5 relevant hashtags on a new line, and finally the source publication name on a new line (e.g., "Source: The Daily Star").

**ERROR HANDLING JSON STRUCTURE:**
- If you absolutely cannot access the URL or extract the required content for any reason, you MUST still return a valid JSON object with an "error" key.
- Example error response: { "error": "Failed to access or process the content from the provided URL." }
`

func processURLPrompt(newsURL string) string {
	return fmt.Sprintf(processURLPromptTemplate, newsURL)
}

// imageSearchPromptTemplate asks for direct image-file URLs matching a
// query. Placeholder: the query.
const imageSearchPromptTemplate = `You are an expert image curator using Google Search. Your task is to find up to 9 high-quality, photorealistic images that are directly relevant to the search query: %q.

**CRITICAL INSTRUCTIONS:**
- You MUST use Google Search to find images.
- Prioritize dynamic, interesting, and clear photos over generic ones.
- The URLs must be direct links to JPG, PNG, or WEBP image files. Do NOT return links to web pages or data URIs.
- All URLs must be valid, publicly accessible, and working. You must internally verify this.

**RESPONSE FORMATTING:**
- You MUST return a valid JSON object and NOTHING ELSE. No extra text, no apologies, no explanations.
- The JSON object must have a single key "imageUrls", which is an array of strings.
- If you cannot find any suitable images, you MUST return a JSON object with an empty array: ` + "`{\"imageUrls\": []}`" + `.

Example success response:
{
  "imageUrls": [
    "https://example.com/image1.jpg",
    "https://example.com/image2.png"
  ]
}`

func imageSearchPrompt(query string) string {
	return fmt.Sprintf(imageSearchPromptTemplate, query)
}

// imageGenerationWrapper frames an operator prompt for photorealistic
// news-style output. Placeholder: the subject.
const imageGenerationWrapper = `Photorealistic, news-style photograph. High resolution. Subject: %s. No text, no logos, no watermarks.`

func imageGenerationPrompt(subject string) string {
	return fmt.Sprintf(imageGenerationWrapper, subject)
}
