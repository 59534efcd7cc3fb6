// Package chat generates the widget's canned assistant replies. The rules
// are keyword matches over the lowercased message, checked in order; the
// first hit wins.
package chat

import "strings"

type rule struct {
	keywords []string
	reply    string
}

var rules = []rule{
	{
		keywords: []string{"bmw", "beemer"},
		reply:    "Great choice! For BMW vehicles, we typically recommend wheels with a 5x120 bolt pattern. What's your specific model and year? I can help you find the perfect fitment with proper offset and sizing.",
	},
	{
		keywords: []string{"honda", "civic", "accord"},
		reply:    "Honda vehicles usually use a 5x114.3 bolt pattern. For Civics, we often recommend 16-18 inch wheels, while Accords can handle 17-19 inch wheels beautifully. What's your budget range?",
	},
	{
		keywords: []string{"ford", "mustang", "f150"},
		reply:    "Ford has different bolt patterns depending on the model. Mustangs use 5x114.3, while F-150s use 6x135. What Ford model are you looking to outfit?",
	},
	{
		keywords: []string{"tire", "tyre"},
		reply:    "For tire recommendations, I'll need to know your wheel size and driving style. Are you looking for all-season, performance, or off-road tires? What's your current tire size?",
	},
	{
		keywords: []string{"offset", "et"},
		reply:    "Offset is crucial for proper fitment! It affects how the wheel sits in relation to your fender and suspension. Too aggressive an offset can cause rubbing or clearance issues. What vehicle are you working with?",
	},
	{
		keywords: []string{"size", "diameter"},
		reply:    "Wheel sizing depends on your vehicle and desired look. We can usually go +1 or +2 inches from stock diameter while maintaining proper tire sidewall height. What's your current wheel size?",
	},
	{
		keywords: []string{"price", "cost", "budget"},
		reply:    "Our wheels range from $150-$800 per wheel depending on size, brand, and finish. We have great options at every price point. What's your target budget per wheel?",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hello! I'm here to help you find the perfect wheels and tires for your vehicle. What car are you looking to upgrade?",
	},
	{
		keywords: []string{"help"},
		reply:    "I can help you with wheel fitment, tire sizing, bolt patterns, offsets, and recommendations for your specific vehicle. Just tell me what you're driving and what you're looking for!",
	},
}

const defaultReply = "I'd be happy to help with your fitment needs! Could you tell me more about your vehicle (make, model, year) and what you're looking for? I can assist with wheel sizing, bolt patterns, offsets, and tire recommendations."

// Respond returns the assistant reply for a user message.
func Respond(userMessage string) string {
	message := strings.ToLower(userMessage)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(message, kw) {
				return r.reply
			}
		}
	}
	return defaultReply
}
