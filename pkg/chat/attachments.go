package chat

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var languageByExt = map[string]string{
	"js": "JavaScript", "jsx": "React JavaScript",
	"ts": "TypeScript", "tsx": "React TypeScript",
	"py": "Python", "java": "Java", "c": "C", "cpp": "C++",
	"cs": "C#", "go": "Go", "rb": "Ruby", "php": "PHP",
	"swift": "Swift", "kt": "Kotlin", "rs": "Rust", "dart": "Dart",
	"sh": "Shell", "sql": "SQL", "html": "HTML", "css": "CSS",
	"scss": "SCSS", "json": "JSON", "md": "Markdown",
	"yml": "YAML", "yaml": "YAML", "xml": "XML",
}

var codeExts = map[string]bool{
	"js": true, "jsx": true, "ts": true, "tsx": true, "py": true,
	"java": true, "c": true, "cpp": true, "cs": true, "go": true,
	"rb": true, "php": true, "swift": true, "kt": true,
}

var textExts = map[string]bool{
	"txt": true, "md": true, "json": true, "csv": true,
	"html": true, "css": true, "js": true, "jsx": true,
	"ts": true, "tsx": true,
}

var documentExts = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true,
	"xlsx": true, "ppt": true, "pptx": true,
}

var (
	dataURLPattern   = regexp.MustCompile(`^data:(.+);base64,`)
	authTokenPattern = regexp.MustCompile(`[?&]token=[^&]+`)
)

// languageFromExtension best-guesses a programming language name from a
// file extension.
func languageFromExtension(ext string) string {
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "unknown"
}

// sanitizeURL strips embedded auth tokens and abbreviates inline-encoded
// payloads to a type marker so raw bytes never land in a prompt.
func sanitizeURL(url string) string {
	url = dataURLPattern.ReplaceAllString(url, "data-url-content-type-")
	return authTokenPattern.ReplaceAllString(url, "")
}

// summarizeAttachments produces the textual briefing prepended to a user
// query: per-file name/size/type, a classification driving tailored model
// instructions, and a sanitized location reference. Built fresh per
// request; never stored as message content.
func summarizeAttachments(attachments []Attachment) string {
	if len(attachments) == 0 {
		return ""
	}

	details := make([]string, 0, len(attachments))
	for _, file := range attachments {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Name), "."))
		isImage := strings.HasPrefix(file.Type, "image/")
		isCode := codeExts[ext]
		isDocument := documentExts[ext]
		isText := strings.Contains(file.Type, "text") || textExts[ext]

		var b strings.Builder
		fmt.Fprintf(&b, "File: %s (%d KB, %s)", file.Name, file.Size/1024, file.Type)

		switch {
		case isImage:
			b.WriteString("\nThis is an image file. Please analyze the visual content and provide observations.")
			b.WriteString("\nInstructions: Describe what you see in the image, including any text, objects, people, or scenes.")
			b.WriteString("\nIf you cannot access the image, please inform the user that you're unable to view the image.")
		case isCode:
			b.WriteString("\nThis is a code file. Please analyze the code and provide insights.")
			b.WriteString("\nInstructions: Explain what the code does, identify any potential issues, and suggest improvements if appropriate.")
			fmt.Fprintf(&b, "\nThis appears to be %s code.", languageFromExtension(ext))
		case isDocument:
			b.WriteString("\nThis is a document file. Please try to extract and analyze the text content.")
			b.WriteString("\nInstructions: Summarize the key points from the document, focusing on the main topics and important details.")
			b.WriteString("\nIf you cannot access the document content, please inform the user.")
		case isText:
			b.WriteString("\nThis is a text file. Please analyze the content and provide insights.")
			b.WriteString("\nInstructions: Read the text and provide analysis, answering any questions the user has about its content.")
		default:
			b.WriteString("\nPlease analyze this file to the best of your ability.")
			b.WriteString("\nIf you cannot access or process this file type, please inform the user.")
		}

		switch ext {
		case "json":
			b.WriteString("\nThis is a JSON file. Please parse the structure and explain the key properties and values.")
		case "csv":
			b.WriteString("\nThis is a CSV file. Please analyze the data structure, identify columns, and provide a summary of the content.")
		case "md":
			b.WriteString("\nThis is a Markdown file. Please interpret the formatted content and provide an overview.")
		}

		if file.URL != "" {
			fmt.Fprintf(&b, "\n\nFile URL: %s", sanitizeURL(file.URL))
			if strings.HasPrefix(file.URL, "data:") {
				b.WriteString("\n(This is a data URL containing the file's contents directly embedded in the URL)")
			}
		} else {
			b.WriteString("\n\nNOTE: No URL provided for this file.")
		}

		details = append(details, b.String())
	}

	var b strings.Builder
	b.WriteString("I've attached the following file(s) to analyze and discuss:\n\n")
	b.WriteString(strings.Join(details, "\n\n---\n\n"))
	b.WriteString("\n\n")
	if len(attachments) > 1 {
		fmt.Fprintf(&b, "Please analyze each of the %d files provided and respond to my query.\n", len(attachments))
		b.WriteString("If you cannot access any of the files, please let me know which ones you can and cannot access.")
	} else {
		b.WriteString("Please analyze the file and respond to my query.\n")
		b.WriteString("If you cannot access or process the file, please let me know.")
	}
	return b.String()
}
