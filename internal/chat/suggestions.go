package chat

import "strings"

// DefaultSuggestionCount is how many follow-up questions the chat page
// shows under the reply box.
const DefaultSuggestionCount = 4

// topicOrder fixes the scan order so a message matching several topics
// always yields the same suggestions.
var topicOrder = []string{"pain", "fever", "cold", "stomach", "headache"}

// topicKeywords maps a topic to per-language trigger words. Detection is
// plain substring matching; languages without a keyword list fall back to
// the English one.
var topicKeywords = map[string]map[string][]string{
	"pain": {
		"th": {"ปวด", "เจ็บ", "แสบ"},
		"en": {"pain", "ache", "hurt", "sore"},
		"jp": {"痛", "痛み"},
	},
	"fever": {
		"th": {"ไข้", "ตัวร้อน"},
		"en": {"fever", "temperature"},
		"jp": {"熱", "発熱"},
	},
	"cold": {
		"th": {"หวัด", "น้ำมูก", "เจ็บคอ", "ไอ"},
		"en": {"cold", "flu", "runny nose", "sore throat", "cough"},
		"jp": {"風邪", "咳", "鼻水"},
	},
	"stomach": {
		"th": {"ท้อง", "อาเจียน", "ท้องเสีย"},
		"en": {"stomach", "nausea", "vomit", "diarrhea"},
		"jp": {"胃", "吐き気", "下痢"},
	},
	"headache": {
		"th": {"ปวดหัว", "เวียนหัว"},
		"en": {"headache", "migraine", "dizzy"},
		"jp": {"頭痛", "めまい"},
	},
}

var topicQuestions = map[string]map[string][]string{
	"pain": {
		"th": {"ปวดบริเวณไหนบ้างครับ?", "อาการปวดมานานแล้วหรือยังครับ?", "มีอะไรช่วยบรรเทาอาการปวดได้บ้างไหมครับ?"},
		"en": {"Where does it hurt?", "How long have you had the pain?", "What helps relieve the pain?"},
		"jp": {"どこが痛みますか?", "痛みはどのくらい続いていますか?", "痛みを和らげる方法は?"},
	},
	"fever": {
		"th": {"ไข้สูงกี่องศาครับ?", "มีอาการอื่นๆ ประกอบไหมครับ?", "เมื่อไหร่ควรพบแพทย์ครับ?"},
		"en": {"What's your temperature?", "Do you have any other symptoms?", "When should I see a doctor?"},
		"jp": {"熱は何度ですか?", "他に症状はありますか?", "いつ医師に診てもらうべきですか?"},
	},
	"cold": {
		"th": {"มีไข้ร่วมด้วยไหมครับ?", "อาการเป็นมากี่วันแล้วครับ?", "ควรพักผ่อนอย่างไรดีครับ?"},
		"en": {"Do you also have a fever?", "How many days have you felt this way?", "How should I rest and recover?"},
		"jp": {"熱もありますか?", "症状は何日続いていますか?", "どのように休めばいいですか?"},
	},
	"stomach": {
		"th": {"ทานอะไรมาก่อนมีอาการครับ?", "มีอาการท้องเสียร่วมด้วยไหมครับ?", "ควรงดอาหารแบบไหนครับ?"},
		"en": {"What did you eat before the symptoms started?", "Do you also have diarrhea?", "What foods should I avoid?"},
		"jp": {"症状の前に何を食べましたか?", "下痢もありますか?", "どんな食べ物を避けるべきですか?"},
	},
	"headache": {
		"th": {"ปวดหัวข้างเดียวหรือทั้งหัวครับ?", "มีอาการคลื่นไส้ร่วมด้วยไหมครับ?", "พักสายตาบ้างหรือยังครับ?"},
		"en": {"Is the pain on one side or all over?", "Do you feel nauseous too?", "Have you rested your eyes?"},
		"jp": {"片側だけ痛みますか?", "吐き気もありますか?", "目を休めましたか?"},
	},
	"general": {
		"th": {"มีอาการอะไรอีกบ้างไหมครับ?", "อยากรู้เรื่องการดูแลสุขภาพทั่วไปไหมครับ?", "ต้องการคำแนะนำเรื่องยาไหมครับ?", "อยากให้ช่วยอะไรอีกไหมครับ?"},
		"en": {"Do you have any other symptoms?", "Would you like general health tips?", "Do you need advice about medication?", "Is there anything else I can help with?"},
		"jp": {"他に症状はありますか?", "健康全般のアドバイスが必要ですか?", "薬についてのアドバイスが必要ですか?", "他にお手伝いできることはありますか?"},
	},
}

// DetectTopics returns the medical topics mentioned in a message.
func DetectTopics(message, lang string) []string {
	msg := strings.ToLower(message)
	var topics []string
	for _, topic := range topicOrder {
		byLang := topicKeywords[topic]
		words, ok := byLang[lang]
		if !ok {
			words = byLang["en"]
		}
		for _, w := range words {
			if strings.Contains(msg, strings.ToLower(w)) {
				topics = append(topics, topic)
				break
			}
		}
	}
	return topics
}

// Suggest builds up to count follow-up questions for the message, topped up
// with general questions when topic matches run short.
func Suggest(message, lang string, count int) []string {
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	if _, ok := topicQuestions["general"][lang]; !ok {
		lang = "en"
	}

	var out []string
	seen := map[string]bool{}
	add := func(qs []string) {
		for _, q := range qs {
			if len(out) >= count {
				return
			}
			if !seen[q] {
				seen[q] = true
				out = append(out, q)
			}
		}
	}

	for _, topic := range DetectTopics(message, lang) {
		add(topicQuestions[topic][lang])
		if len(out) >= count {
			break
		}
	}
	add(topicQuestions["general"][lang])
	return out
}
