package intent

// Exemplar is one labelled utterance.
type Exemplar struct {
	Intent    Intent
	Utterance string
}

// intentOrder fixes iteration order so ties resolve toward crisis.
var intentOrder = []Intent{
	IntentCrisis,
	IntentFirstMessage,
	IntentDemographicResponse,
	IntentAssessmentResponse,
	IntentReadyForDiagnosis,
	IntentOffTopic,
}

var defaultUtterances = map[Intent][]string{
	IntentCrisis: {
		"I want to kill myself",
		"I'm going to hurt myself",
		"I want to die",
		"Life is not worth living",
		"I have a plan to end it all",
		"I can't take this anymore and want to end it",
		"I'm thinking about suicide",
		"I cut myself last night",
		"I want to hurt myself again",
		"Better off dead",
		"No reason to keep living",
		"Planning to overdose",
	},
	IntentFirstMessage: {
		"Hello",
		"Hi there",
		"I need help",
		"Can you help me?",
		"I'm feeling anxious",
		"I've been depressed",
		"I'm stressed about work",
		"Having trouble sleeping",
		"Feeling overwhelmed lately",
		"I need to talk to someone",
		"I'm not doing well",
		"Can we talk?",
	},
	IntentDemographicResponse: {
		"My name is John",
		"I'm 25 years old",
		"I'm male",
		"I'm female",
		"I prefer not to say",
		"You can call me Sarah",
		"I'm 30",
		"Twenty-five",
		"I'm a woman",
		"I'm a man",
	},
	IntentAssessmentResponse: {
		"About 2 weeks",
		"For 3 months now",
		"Every day",
		"A few times a week",
		"7 out of 10",
		"Pretty intense",
		"Work stress mainly",
		"When I'm alone",
		"I can't sleep well",
		"It's affecting my work",
		"I've been tired all the time",
		"I get headaches",
		"I haven't tried anything yet",
		"I talk to my friends sometimes",
		"I don't have anyone to talk to",
		"Just started a few days ago",
		"It's been going on for months",
		"Almost never",
		"Constantly",
	},
	IntentReadyForDiagnosis: {
		"I think that's everything",
		"What do you think is going on with me?",
		"Can you give me your assessment now?",
		"Is that enough information?",
		"What's the diagnosis?",
	},
	IntentOffTopic: {
		"What's the weather like?",
		"Tell me a joke",
		"Who won the game yesterday?",
		"What should I eat for dinner?",
		"How do I cook pasta?",
		"What's 2+2?",
		"Can you help me with my homework?",
	},
}

// DefaultExemplars returns the built-in exemplar table in stable order.
func DefaultExemplars() []Exemplar {
	var out []Exemplar
	for _, in := range intentOrder {
		for _, u := range defaultUtterances[in] {
			out = append(out, Exemplar{Intent: in, Utterance: u})
		}
	}
	return out
}
