package botguard

import "testing"

func TestCompilePatternsIsCaseInsensitive(t *testing.T) {
	patterns := compilePatterns(`cloudflare`)
	if len(patterns) != 1 {
		t.Fatalf("expected 1 compiled pattern, got %d", len(patterns))
	}
	if !patterns[0].MatchString("Please wait... CLOUDFLARE is checking your browser") {
		t.Error("expected case-insensitive match")
	}
}

func TestCloudflareRulePatternsMatchKnownMarkers(t *testing.T) {
	var cf *rule
	for i := range rules {
		if rules[i].family == FamilyCloudflare {
			cf = &rules[i]
		}
	}
	if cf == nil {
		t.Fatal("expected a cloudflare rule to be registered")
	}

	source := "checking your browser before accessing. ray id: abc123"
	matched := 0
	for _, p := range cf.patterns {
		if p.MatchString(source) {
			matched++
		}
	}
	if matched == 0 {
		t.Error("expected at least one cloudflare pattern to match known marker text")
	}
}

func TestGenericCaptchaRuleMatchesRecaptcha(t *testing.T) {
	var gc *rule
	for i := range rules {
		if rules[i].family == FamilyGenericCaptcha {
			gc = &rules[i]
		}
	}
	if gc == nil {
		t.Fatal("expected a generic captcha rule to be registered")
	}

	matched := false
	for _, p := range gc.patterns {
		if p.MatchString("please complete the recaptcha below") {
			matched = true
		}
	}
	if !matched {
		t.Error("expected generic captcha patterns to match 'recaptcha'")
	}
}

func TestDetectionThresholdOrdering(t *testing.T) {
	// Two selector hits alone (40) clear the threshold (30); one alone (20) doesn't.
	if scoreSelector*2 <= detectionThreshold {
		t.Error("expected two selector hits to exceed the detection threshold")
	}
	if scoreSelector > detectionThreshold {
		t.Error("expected a single selector hit to stay at or below the detection threshold")
	}
}
