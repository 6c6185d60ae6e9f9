// Package extract provides heuristic entity extraction for loom.
//
// Four independent extractors run over the same document text — person
// names, acronyms (with optional explicit definitions), known technical
// phrases, and product names — each producing candidate surface forms with
// raw occurrence counts. Candidates are unvalidated; the Governor applies
// deny-lists, structural checks, and occurrence thresholds before anything
// reaches the merge engine.
//
// All extractors are pure, stateless, single-pass functions. Every word
// list they consult lives in a Vocabulary value that is built once and
// passed in explicitly, so tests can run with overridden vocabularies.
package extract

import "strings"

// Vocabulary holds the deny-lists, allow-lists, and pattern catalogues the
// extractors and the Governor consult. Treat it as immutable after
// construction.
type Vocabulary struct {
	// Pronouns and common words that are never names or terms.
	Pronouns    map[string]bool
	CommonWords map[string]bool

	// Words indicating a candidate "name" is a title or role.
	RoleWords map[string]bool

	// Words that disqualify a name by position.
	InvalidNameEndings map[string]bool
	InvalidNameStarts  map[string]bool

	// First names known in the corpus, used to reject "FirstName FirstName".
	KnownFirstNames map[string]bool

	// Verbs indicating the preceding capitalized word is a speaker.
	SpeakingVerbs []string

	// Acronyms that look valid but never are (months, roman numerals, ...).
	AcronymFalsePositives map[string]bool

	// Organization and technology names that disqualify person candidates
	// ("Apache Kafka" is not a colleague).
	OrgTechNames map[string]bool

	// Multi-word technical phrase templates, matched case-insensitively.
	PhrasePatterns []string

	// Product names: regex alternative → canonical display form.
	Products []ProductPattern

	// Well-known technical terms; the corpus-wide confidence gate keeps only
	// definitions on this list, and the population pass admits them
	// regardless of count.
	KnownTechTerms map[string]bool

	// Name part length window.
	MinNamePartLen int
	MaxNamePartLen int
}

// ProductPattern maps a matched product literal to its display form.
type ProductPattern struct {
	Literal string // matched case-insensitively on word boundaries
	Display string
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// DefaultVocabulary returns the built-in word lists. Callers needing
// deterministic tests with a tiny vocabulary construct their own.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Pronouns: wordSet(
			"he", "she", "they", "it", "we", "i", "you", "who", "what",
			"that", "this", "there",
		),
		CommonWords: wordSet(
			"the", "and", "for", "but", "not", "all", "can", "had", "her", "was", "one", "our",
			"out", "day", "get", "has", "him", "his", "how", "its", "may", "new", "now", "old",
			"see", "two", "way", "any", "boy", "did", "own", "say", "too", "use", "just", "know",
			"take", "come", "made", "find", "here", "many", "make", "like", "time", "very",
			"after", "most", "also", "back", "been", "well", "before", "should", "through",
			"first", "where", "about", "being", "could", "going", "great", "might", "never",
			"right", "still", "think", "those", "three", "under", "using", "would", "based",
			"other", "these", "which", "while", "again", "below", "every", "their",
			"however", "therefore", "meanwhile", "furthermore", "additionally", "basically",
			"essentially", "currently", "finally", "initially", "overall", "specifically",
			"meeting", "notes", "questions", "points", "summary", "agenda", "action", "items",
			"transcript", "outline", "discussion", "overview", "talking", "open", "key",
			"yeah", "okay", "yes", "no", "sure", "sorry", "thanks", "thank", "let",
			"then", "team", "staff", "software", "engineer", "senior", "junior", "manager",
		),
		RoleWords: wordSet(
			"staff", "senior", "junior", "lead", "principal", "engineer", "manager", "director",
			"analyst", "developer", "architect", "consultant", "specialist", "coordinator",
			"software", "data", "product", "project", "program", "technical", "qa", "devops",
		),
		InvalidNameEndings: wordSet(
			"yeah", "okay", "yes", "no", "so", "sorry", "thanks", "well", "right", "um", "uh",
			"oh", "hi", "hey", "hello", "bye", "will", "can", "would", "could", "should",
			"cool", "nice", "great", "good", "fine", "sure", "yep", "nope", "actually",
			"exactly", "basically", "definitely", "absolutely", "probably", "maybe",
			"everyone", "anyone", "someone", "nobody", "everybody", "to", "is", "are",
			"yet", "or", "if", "then", "when", "where", "what", "why", "how",
			"exciting", "awesome", "look", "discussed", "iceberg", "spark", "kafka",
			"questions", "points", "notes", "items", "summary", "transcript", "meeting",
			"steps", "context", "date", "problem", "principles", "walkthrough", "practices",
			"risks", "requirements", "overview", "discussion", "decisions", "blockers",
			"architecture", "hydrant", "ticket",
			"watermark", "pipeline", "layer", "table", "schema", "database", "cluster",
			"bucket", "stream", "query", "model", "service", "process", "job", "task",
			"config", "configuration", "setup", "deployment", "environment", "instance",
		),
		InvalidNameStarts: wordSet(
			"next", "business", "due", "architectural", "document", "list", "best",
			"open", "key", "main", "current", "new", "old", "high", "low", "full",
			"initial", "final", "total", "complete", "partial", "additional",
			"medallion", "fire", "some", "have", "be", "fq", "topics", "apache", "of",
		),
		KnownFirstNames: wordSet(
			"russ", "phil", "lokesh", "zee", "sunny", "danyil", "phuc", "samer", "ankit",
			"marc", "tom", "michael", "brian", "sreehari", "mubee", "luke", "lawrence",
			"poorna", "rebecca", "richard", "yogi", "raghvendra", "victoria", "ryan",
			"jessica", "david", "tony", "zeeshan", "daniel",
		),
		SpeakingVerbs: []string{
			"said", "says", "asked", "asks", "explained", "explains", "mentioned", "mentions",
			"stated", "states", "confirmed", "confirms", "noted", "notes", "suggested", "suggests",
			"agreed", "agrees", "responded", "responds", "clarified", "clarifies", "inquired",
			"inquires", "acknowledged", "acknowledges", "greeted", "greets", "thanked", "thanks",
			"added", "adds", "replied", "replies", "discussed", "discusses", "described",
			"describes", "demonstrated", "demonstrates", "showed", "shows", "pointed", "points",
			"continued", "continues", "interrupted", "interrupts", "concluded", "concludes",
			"proposed", "proposes", "recommended", "recommends", "emphasized", "emphasizes",
			"highlighted", "highlights", "announced", "announces", "reported", "reports",
			"observed", "observes", "commented", "comments", "questioned", "questions",
			"answered", "answers", "elaborated", "elaborates", "reiterated", "reiterates",
			"summarized", "summarizes", "outlined", "outlines", "expressed", "expresses",
			"indicated", "indicates", "informed", "informs", "conveyed", "conveys",
			"shared", "shares", "revealed", "reveals", "admitted", "admits",
		},
		AcronymFalsePositives: acronymSet(
			"AM", "PM", "OK", "VS", "IE", "EG", "ET", "AL", "RE", "FW", "CC", "BCC",
			"II", "III", "IV", "VI", "VII", "VIII", "IX", "XI", "XII",
			"MB", "GB", "TB", "KB", "MS",
			"MR", "DR", "JR", "SR",
			"US", "UK", "EU", "UN",
			"ID",
			"HI", "BY", "TO", "UP", "IN", "ON", "AT", "AS", "IS", "IT", "OR", "AN",
			"BE", "DO", "GO", "IF", "MY", "NO", "SO", "WE", "HE", "ME",
			"V1", "V2", "V3", "V4", "V5",
			"PR", "AI", "TLC",
		),
		OrgTechNames: wordSet(
			"apache", "google", "amazon", "microsoft", "github", "gitlab", "docker",
			"kubernetes", "terraform", "confluence", "jira", "slack",
		),
		PhrasePatterns: []string{
			`Data\s+Federation`,
			`Stream\s+Processing`,
			`Change\s+Data\s+Capture`,
			`Data\s+Lake(?:house)?`,
			`Apache\s+(?:Iceberg|Spark|Kafka|Hudi|Hadoop|Parquet|Avro)`,
			`Medallion\s+Architecture`,
			`(?:Bronze|Silver|Gold)\s+(?:Layer|Table|Zone)`,
			`Full\s+Load`,
			`Initial\s+Sync`,
			`Data\s+Pipeline`,
			`Data\s+Warehouse`,
			`Machine\s+Learning`,
			`Continuous\s+Integration`,
			`Continuous\s+Delivery`,
			`Infrastructure\s+as\s+Code`,
			`Version\s+Control`,
			`Pull\s+Request`,
			`Code\s+Review`,
			`Unit\s+Test(?:ing)?`,
			`Integration\s+Test(?:ing)?`,
			`Load\s+Test(?:ing)?`,
			`Schema\s+Evolution`,
			`Time\s+Travel`,
			`Batch\s+Processing`,
			`Real[\s-]?[Tt]ime\s+Processing`,
		},
		Products: []ProductPattern{
			{"MongoDB", "MongoDB"},
			{"Terraform", "Terraform"},
			{"Snowflake", "Snowflake"},
			{"Databricks", "Databricks"},
			{"Fivetran", "Fivetran"},
			{"Confluent", "Confluent"},
			{"Kubernetes", "Kubernetes"},
			{"Docker", "Docker"},
			{"Jenkins", "Jenkins"},
			{"GitHub", "GitHub"},
			{"GitLab", "GitLab"},
			{"Jira", "Jira"},
			{"Confluence", "Confluence"},
			{"Slack", "Slack"},
			{"Python", "Python"},
			{"Scala", "Scala"},
			{"Java", "Java"},
			{"Spark", "Spark"},
			{"Iceberg", "Iceberg"},
			{"Parquet", "Parquet"},
			{"Hadoop", "Hadoop"},
			{"PySpark", "PySpark"},
			{"DataFrame", "DataFrame"},
			{"Atlas", "Atlas"},
			{"Netflix", "Netflix"},
		},
		KnownTechTerms: wordSet(
			"aws", "s3", "ec2", "rds", "sqs", "sns", "iam", "vpc", "lambda", "cloudformation",
			"cloudwatch", "dynamodb", "kinesis", "glue", "athena",
			"apache-iceberg", "apache-kafka", "apache-spark", "apache-hadoop", "apache-hudi",
			"apache-parquet", "apache-avro",
			"mongodb", "postgres", "postgresql", "mysql", "mariadb", "redis", "cassandra",
			"elasticsearch", "solr", "couchdb", "neo4j",
			"json", "xml", "yaml", "csv", "parquet", "avro", "orc", "protobuf", "bson",
			"api", "rest", "graphql", "grpc", "http", "https", "websocket", "mqtt",
			"sql", "nosql", "crud", "cors", "jwt", "oauth", "saml", "oidc",
			"docker", "kubernetes", "k8s", "helm", "terraform", "ansible", "jenkins",
			"gitlab", "github", "bitbucket", "circleci", "travis-ci",
			"etl", "elt", "olap", "oltp", "acid", "cdc", "change-data-capture",
			"medallion", "lakehouse", "data-lake", "data-warehouse",
			"sdk", "cli", "url", "uri", "uuid", "guid", "rbac", "saas", "paas", "iaas",
			"cicd", "ci-cd", "vpn", "dns", "ssl", "tls", "ssh", "ftp", "sftp",
			"oop", "functional", "async", "await", "promise", "callback", "event-loop",
			"thread", "process", "mutex", "semaphore",
			"monitoring", "logging", "metrics", "tracing", "alerting",
			"encryption", "hashing", "authentication", "authorization",
		),
		MinNamePartLen: 2,
		MaxNamePartLen: 15,
	}
}

func acronymSet(terms ...string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	return set
}
