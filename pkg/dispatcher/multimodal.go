package dispatcher

import "strings"

// multimodalModels maps canonical vendor identifiers onto model-name
// substrings known to accept file attachments. A request carrying
// attachments is rejected before any network call unless the active
// vendor/model pair matches an entry.
var multimodalModels = map[string][]string{
	"openai": {"gpt-4-vision-preview", "gpt-4o", "gpt-4v"},
	"zhipu":  {"glm-4v", "glm-4v-32k"},
	"aliyun": {"qwen-vl-plus", "qwen-vl-max"},
	"baidu":  {"ernie-vil", "ernie-bot-multimodal"},
	"gemini": {"gemini-1.5-pro", "gemini-1.5-flash"},
}

// supportsMultimodal reports whether the vendor/model pair can accept
// attachments. Matching is a case-insensitive substring check against
// the capability table.
func supportsMultimodal(vendor, model string) bool {
	patterns, ok := multimodalModels[strings.ToLower(vendor)]
	if !ok {
		return false
	}
	modelLower := strings.ToLower(model)
	for _, pattern := range patterns {
		if strings.Contains(modelLower, pattern) {
			return true
		}
	}
	return false
}
