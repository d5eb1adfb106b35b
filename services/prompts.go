package services

import (
	"fmt"
	"strings"

	"aromasens/models"
)

// phrasebook holds every language-dependent literal the conversation uses
type phrasebook struct {
	assistant      string
	audience       map[string]string
	startTask      string
	stepTasks      map[models.ConversationStep]string
	questions      map[models.ConversationStep]string
	intro          string
	apology        string
	completion     string
	recommended    string
	lastMessage    string
	stepLine       string
	tone           string
	occasions      []string
	families       []string
	profileSystem  string
	profileExpert  string
	profileFields  [5]string
	profileAsk     string
	profileFormat  string
	candidatesLine string
}

var phrasebooks = map[models.Language]phrasebook{
	models.LanguageES: {
		assistant: "Eres un asistente virtual de una tienda de perfumes llamada AROMASENS. Estás manteniendo una conversación con un cliente para recomendarle el perfume perfecto.",
		audience: map[string]string{
			models.GenderFeminine:  "El cliente está buscando fragancias femeninas.",
			models.GenderMasculine: "El cliente está buscando fragancias masculinas.",
		},
		startTask: "Estás iniciando la conversación. Preséntate y pregunta por la edad del cliente.",
		stepTasks: map[models.ConversationStep]string{
			models.StepExperience:  "Pregunta sobre su experiencia con perfumes y sus favoritos.",
			models.StepOccasion:    "Pregunta sobre las ocasiones para las que quiere el perfume.",
			models.StepPreferences: "Pregunta sobre sus notas o tipos de fragancias preferidas.",
			models.StepComplete:    "Agradece sus respuestas y hazle saber que le proporcionarás una recomendación.",
		},
		questions: map[models.ConversationStep]string{
			models.StepAge:         "¿Cuántos años tienes?",
			models.StepExperience:  "¿Qué experiencia tienes con los perfumes? ¿Tienes alguno favorito?",
			models.StepOccasion:    "¿Para qué ocasiones quieres usar el perfume?",
			models.StepPreferences: "¿Qué notas o tipos de fragancias prefieres?",
			models.StepComplete:    "¡Gracias por tus respuestas! En un momento te daré mi recomendación.",
		},
		intro:         "¡Hola! Soy el asistente de AROMASENS y te ayudaré a encontrar tu perfume ideal.",
		apology:       "Disculpa, tuve un problema para generar mi respuesta.",
		completion:    "¡Gracias por tus respuestas! Basándome en tu perfil y preferencias, ya tengo una recomendación perfecta para ti.",
		recommended:   "Basado en tus preferencias y perfil, hemos encontrado el perfume perfecto para ti.",
		lastMessage:   "El último mensaje del cliente fue: %q",
		stepLine:      "Estás en el paso %d de la conversación. En este paso, tu tarea es: %s",
		tone:          "Tu respuesta debe ser conversacional, amistosa y concisa.",
		occasions:     []string{"Uso diario", "Eventos formales", "Citas románticas", "Reuniones sociales", "Trabajo"},
		families:      []string{"Florales", "Frutales", "Amaderadas", "Orientales/especiadas", "Cítricas", "Dulces"},
		profileSystem: "Eres un asistente experto en perfumería y psicología, especializado en hacer recomendaciones personalizadas basadas en perfiles psicológicos. Siempre respondes en formato JSON.",
		profileExpert: "Actúa como un experto en perfumería y psicología. Basándote en la siguiente información del usuario:",
		profileFields: [5]string{"Género", "Edad", "Experiencia previa con perfumes", "Ocasión de uso", "Preferencias personales"},
		profileAsk:    "Por favor crea un perfil psicológico detallado y recomienda un perfume específico del catálogo que se adapte a su personalidad y necesidades. Para recommendationReason incluye emojis y formato markdown.",
		profileFormat: `Devuelve únicamente un objeto JSON con esta estructura exacta:
{
  "psychologicalProfile": "Análisis psicológico detallado basado en las respuestas",
  "recommendedPerfumeId": <id numérico de un perfume del catálogo>,
  "recommendationReason": "Explicación de por qué este perfume se adapta al perfil"
}`,
		candidatesLine: "Catálogo disponible (ordenado por afinidad):",
	},
	models.LanguageEN: {
		assistant: "You are a virtual assistant for a perfume shop called AROMASENS. You are chatting with a customer to recommend the perfect perfume.",
		audience: map[string]string{
			models.GenderFeminine:  "The customer is looking for feminine fragrances.",
			models.GenderMasculine: "The customer is looking for masculine fragrances.",
		},
		startTask: "You are opening the conversation. Introduce yourself and ask for the customer's age.",
		stepTasks: map[models.ConversationStep]string{
			models.StepExperience:  "Ask about their experience with perfumes and their favorites.",
			models.StepOccasion:    "Ask about the occasions they want the perfume for.",
			models.StepPreferences: "Ask about their preferred notes or fragrance families.",
			models.StepComplete:    "Thank them for their answers and let them know you will give them a recommendation.",
		},
		questions: map[models.ConversationStep]string{
			models.StepAge:         "How old are you?",
			models.StepExperience:  "What is your experience with perfumes? Do you have a favorite?",
			models.StepOccasion:    "What occasions do you want to wear the perfume for?",
			models.StepPreferences: "Which notes or fragrance families do you prefer?",
			models.StepComplete:    "Thank you for your answers! I will have a recommendation for you in a moment.",
		},
		intro:         "Hi! I'm the AROMASENS assistant and I'll help you find your ideal perfume.",
		apology:       "Sorry, I had trouble generating my reply.",
		completion:    "Thank you for your answers! Based on your profile and preferences, I already have a perfect recommendation for you.",
		recommended:   "Based on your preferences and profile, we found the perfect perfume for you.",
		lastMessage:   "The customer's last message was: %q",
		stepLine:      "You are at step %d of the conversation. At this step your task is: %s",
		tone:          "Your reply must be conversational, friendly and concise.",
		occasions:     []string{"Daily wear", "Formal events", "Romantic dates", "Social gatherings", "Work"},
		families:      []string{"Floral", "Fruity", "Woody", "Oriental/spicy", "Citrus", "Sweet"},
		profileSystem: "You are an expert assistant in perfumery and psychology, specialized in personalized recommendations based on psychological profiles. You always answer in JSON.",
		profileExpert: "Act as an expert in perfumery and psychology. Based on the following information about the user:",
		profileFields: [5]string{"Gender", "Age", "Previous experience with perfumes", "Occasion", "Personal preferences"},
		profileAsk:    "Please write a detailed psychological profile and recommend one specific perfume from the catalog that fits their personality and needs. Use emojis and markdown in recommendationReason.",
		profileFormat: `Return only a JSON object with this exact structure:
{
  "psychologicalProfile": "Detailed psychological analysis based on the answers",
  "recommendedPerfumeId": <numeric id of a catalog perfume>,
  "recommendationReason": "Explanation of why this perfume fits the profile"
}`,
		candidatesLine: "Available catalog (ordered by affinity):",
	},
}

func phrases(lang models.Language) phrasebook {
	if p, ok := phrasebooks[lang]; ok {
		return p
	}
	return phrasebooks[models.LanguageES]
}

// QuickReplies returns the suggestion set attached when the conversation enters step.
// Only the occasion and fragrance-family questions carry suggestions.
func QuickReplies(step models.ConversationStep, lang models.Language) []string {
	p := phrases(lang)
	switch step {
	case models.StepPreferences:
		return append([]string(nil), p.occasions...)
	case models.StepComplete:
		return append([]string(nil), p.families...)
	}
	return nil
}

func buildStartPrompt(gender string, lang models.Language) string {
	p := phrases(lang)
	return strings.Join([]string{p.assistant, p.audience[gender], p.startTask, p.tone}, "\n\n")
}

func buildStepPrompt(gender, message string, next models.ConversationStep, lang models.Language) string {
	p := phrases(lang)
	return strings.Join([]string{
		p.assistant,
		p.audience[gender],
		fmt.Sprintf(p.lastMessage, message),
		fmt.Sprintf(p.stepLine, int(next), p.stepTasks[next]),
		p.tone,
	}, "\n\n")
}

// degradedStart is the canned opening used when every backend failed
func degradedStart(lang models.Language) string {
	p := phrases(lang)
	return p.intro + " " + p.questions[models.StepAge]
}

// degradedStep is the canned reply for next when every backend failed
func degradedStep(next models.ConversationStep, lang models.Language) string {
	p := phrases(lang)
	return p.apology + " " + p.questions[next]
}

func completionMessage(lang models.Language) string {
	return phrases(lang).completion
}

func recommendationMessage(lang models.Language) string {
	return phrases(lang).recommended
}

func profileSystemPrompt(lang models.Language) string {
	return phrases(lang).profileSystem
}

// buildProfilePrompt renders the structured-profile request shared by every backend
func buildProfilePrompt(req ProfileRequest) string {
	p := phrases(req.Language)
	prefs := req.Preferences
	values := [5]string{req.Gender, prefs.Age, prefs.Experience, prefs.Occasion, prefs.Preferences}

	var b strings.Builder
	b.WriteString(p.profileExpert)
	b.WriteString("\n\n")
	for i, label := range p.profileFields {
		fmt.Fprintf(&b, "- %s: %s\n", label, values[i])
	}
	if len(req.Candidates) > 0 {
		b.WriteString("\n")
		b.WriteString(p.candidatesLine)
		for _, c := range req.Candidates {
			fmt.Fprintf(&b, "\n- id %d: %s (%s). %s", c.ID, c.Name, c.Brand, strings.Join(c.Notes, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.profileAsk)
	b.WriteString("\n\n")
	b.WriteString(p.profileFormat)
	return b.String()
}
