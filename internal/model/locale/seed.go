package locale

// Seed provides the English and Tamil tables shipped with the chat.
func Seed() []Table {
	return []Table{
		{
			Code: "en",
			UI: map[string]string{
				"chat_header_title":    "Veterinary Chatbot",
				"welcome_message":      "Welcome to the Veterinary Chatbot!",
				"chatbot_description":  "I'm here to help answer your questions about veterinary care. Consult a veterinarian for an accurate diagnosis and proper treatment plan.",
				"input_placeholder":    "Type your question here...",
				"send_button":          "Send",
				"feedback_placeholder": "Enter your feedback here...",
				"feedback_button":      "Submit Feedback",
			},
			Greetings: map[string]string{
				"hello":          "Hello! How can I assist you today?",
				"hi":             "Hi there! How can I help you?",
				"good morning":   "Good morning! How can I assist you today?",
				"good afternoon": "Good afternoon! How can I help you?",
				"good evening":   "Good evening! How can I assist you today?",
				"good night":     "Good night! If you have any more questions, feel free to ask tomorrow.",
				"thank you":      "You're welcome! If you have any more questions, feel free to ask.",
				"thanks":         "You're welcome! If you have any more questions, feel free to ask.",
				"ok":             "Yes, I'm always here to assist you.",
			},
			SectionLabels: []string{
				"Definition", "Symptoms", "Treatment", "Ingredients",
				"Causes", "Prevention", "Diagnosis", "Dosage", "Note",
			},
			Advisories: map[Advisory]string{
				AdvisoryInvalidQuery:   "⚠️ Please enter a valid query (max %d characters).",
				AdvisoryNoResult:       "⚠️ No relevant information found. Try asking differently.",
				AdvisoryTransportError: "❌ Error: Unable to fetch response. Please try again later.",
				AdvisoryBusy:           "⏳ Still working on your previous question.",
			},
		},
		{
			Code: "ta",
			UI: map[string]string{
				"chat_header_title":    "வேளாண் சாட்போட்",
				"welcome_message":      "கால்நடை மருத்துவ அரட்டைப் பெட்டிக்கு வருக!",
				"chatbot_description":  "கால்நடை பராமரிப்பு பற்றிய உங்கள் கேள்விகளுக்கு பதிலளிக்க நான் இங்கே இருக்கிறேன். துல்லியமான நோயறிதல் மற்றும் சரியான சிகிச்சை திட்டத்திற்கு ஒரு கால்நடை மருத்துவரை அணுகவும்.",
				"input_placeholder":    "உங்கள் கேள்வியை இங்கே எழுதவும்...",
				"send_button":          "அனுப்பு",
				"feedback_placeholder": "உங்கள் கருத்துக்களை இங்கே எழுதவும்...",
				"feedback_button":      "சமர்ப்பிக்கவும்",
			},
			Greetings: map[string]string{
				"வணக்கம்": "வணக்கம்! என்னால் எப்படி உதவ முடியும்?",
				"ஹலோ":     "ஹலோ! நான் உங்களுக்கு எப்படி உதவ முடியும்?",
				"நலம்":    "நலம்! நான் உங்களுக்கு எப்படி உதவ முடியும்?",
			},
			SectionLabels: []string{"வரையறை", "அறிகுறிகள்", "சிகிச்சை", "பொருட்கள்"},
		},
	}
}
