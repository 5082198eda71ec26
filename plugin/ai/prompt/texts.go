package prompt

import (
	"github.com/hrygo/acutie/plugin/ai/assessment"
)

// Fixed user-visible replies. No internal error text ever reaches the user;
// every failure surfaces as one of these.
const (
	CrisisResources = `I'm deeply concerned about what you're sharing with me. Your safety is the absolute priority right now.

Please contact emergency services immediately:
National Suicide Prevention Lifeline: 988 (US)
Crisis Text Line: Text HOME to 741741
Emergency Services: 911

Are you in a safe location right now? Is someone with you?

You deserve immediate professional support. Please reach out to one of these services right away. Your life has value and help is available.`

	OffTopicRedirect = `I can only conduct assessments for mental health conditions like anxiety, depression, stress, and related concerns. I'm not able to provide information about other topics.

If you have mental health concerns you'd like to discuss, I'm here to help assess them.`

	GreetingFallback = "Hello, I'm Acutie, your mental health assessment assistant. How long have you been experiencing what brought you here today?"

	EmpatheticGreetingFallback = "Hello, I'm Acutie, your mental health assessment assistant. I'm sorry you're going through a difficult time. Before we begin, could you share your preferred name, your age and your gender?"

	AssessmentFallback = "Could you tell me more about how this has been affecting you?"

	DiagnosisFallback = "Based on what you've shared, I recommend speaking with a mental health professional who can provide a proper assessment and support. This conversation has given me helpful information, but a licensed professional can offer you an official diagnosis and treatment plan."

	GenericApology = "I'm sorry, I encountered an error processing your message. Please try again."

	SessionCompleted = "This assessment session has been completed. If you'd like to talk through something new, please start a new session. If you are in danger, please contact emergency services right away."
)

var errorMessages = map[string]string{
	"rate_limit":     "I'm experiencing high traffic right now. Please try again in a moment.",
	"context_length": "Our conversation has grown quite long. Let me provide an assessment based on what we've discussed.",
	"timeout":        "I'm taking a bit longer to respond. Please try again.",
	"authentication": "I'm having trouble connecting to the service. Please try again later.",
	"connection":     "I'm having trouble connecting to the service. Please try again later.",
	"not_configured": "I'm having trouble connecting to the service. Please try again later.",
	"unknown":        "I encountered an unexpected issue. Please try again.",
}

// ErrorMessage returns the user-safe message for a model error kind.
func ErrorMessage(kind string) string {
	if msg, ok := errorMessages[kind]; ok {
		return msg
	}
	return errorMessages["unknown"]
}

var questions = map[assessment.Dimension]string{
	assessment.DimensionDuration:         "How long have you been experiencing these feelings?",
	assessment.DimensionFrequency:        "How often do you notice these feelings, for example every day or a few times a week?",
	assessment.DimensionIntensity:        "On a scale from 1 to 10, how intense do these feelings usually get?",
	assessment.DimensionDailyImpact:      "How has this been affecting your daily life, such as your work, sleep or relationships?",
	assessment.DimensionTriggers:         "Have you noticed any situations or events that tend to bring these feelings on or make them worse?",
	assessment.DimensionPhysicalSymptoms: "Have you had any physical symptoms alongside this, like fatigue, headaches or changes in appetite?",
	assessment.DimensionCoping:           "What have you tried so far to cope with how you're feeling?",
	assessment.DimensionSupportSystem:    "Is there someone in your life you feel comfortable talking to about this?",
}

// Question returns the scripted question for a dimension.
func Question(d assessment.Dimension) string {
	if q, ok := questions[d]; ok {
		return q
	}
	return AssessmentFallback
}

// Introduction opens the interview on the neutral path.
const Introduction = "Hello, I'm Acutie, your mental health assessment assistant. I'll ask you a few questions, one at a time, to understand what you're going through."
