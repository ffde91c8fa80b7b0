package resolve

// nicknameMap maps common nicknames to formal given names. Filer names in the
// corpus almost always use the formal name, so queries arriving with a
// nickname ("Bill Smith") are expanded before matching.
var nicknameMap = map[string]string{
	"bill": "william", "billy": "william", "will": "william",
	"bob": "robert", "bobby": "robert", "rob": "robert", "robbie": "robert",
	"dick": "richard", "rick": "richard", "ricky": "richard", "rich": "richard",
	"jim": "james", "jimmy": "james", "jamie": "james",
	"mike": "michael", "micky": "michael", "mickey": "michael",
	"dave": "david", "davey": "david",
	"steve": "steven", "stevie": "steven",
	"chris": "christopher",
	"dan": "daniel", "danny": "daniel",
	"tom": "thomas", "tommy": "thomas",
	"tony": "anthony",
	"joe": "joseph", "joey": "joseph",
	"ben": "benjamin", "benny": "benjamin",
	"sam": "samuel", "sammy": "samuel",
	"matt": "matthew", "matty": "matthew",
	"nick": "nicholas", "nicky": "nicholas",
	"andy": "andrew", "drew": "andrew",
	"greg": "gregory",
	"pat": "patricia", "patty": "patricia", "patti": "patricia",
	"liz": "elizabeth", "beth": "elizabeth", "betty": "elizabeth", "betsy": "elizabeth",
	"sue": "susan", "susie": "susan", "suzy": "susan",
	"kathy": "katherine", "kate": "katherine", "katie": "katherine",
	"jen": "jennifer", "jenny": "jennifer", "jenn": "jennifer",
}

// namePrefixes are honorifics stripped from the front of a name.
var namePrefixes = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sir": true, "dame": true, "lord": true, "lady": true, "rev": true,
}

// nameSuffixes are generational and professional suffixes stripped from the
// end of a name.
var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
	"esq": true, "md": true, "phd": true, "jd": true, "cpa": true,
	"cfa": true, "mba": true,
}
