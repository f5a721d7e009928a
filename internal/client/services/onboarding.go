package services

import "context"

type Onboarding struct{ api API }

func (o *Onboarding) State(ctx context.Context) (OnboardingState, error) {
	var out OnboardingState
	err := o.api.Get(ctx, "/onboarding", &out)
	return out, err
}

type stepRequest struct {
	Step    string         `json:"step"`
	Answers map[string]any `json:"answers"`
}

func (o *Onboarding) SaveStep(ctx context.Context, step string, answers map[string]any) (OnboardingState, error) {
	var out OnboardingState
	err := o.api.Put(ctx, "/onboarding/step", stepRequest{Step: step, Answers: answers}, &out)
	return out, err
}

func (o *Onboarding) Complete(ctx context.Context) (OnboardingState, error) {
	var out OnboardingState
	err := o.api.Post(ctx, "/onboarding/complete", nil, &out)
	return out, err
}
